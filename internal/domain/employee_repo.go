package domain

type EmployeeRepo interface {
	GetAllEmployees() ([]Employee, error)
	GetEmployeeByID(id int64) (Employee, error)
	CreateOrUpdateEmployee(e Employee) error
	SetHourlyRate(id int64, rate float64) error
}

type Employee struct {
	ID         int64
	Name       string
	ChatID     int64
	Role       string
	HourlyRate float64
}
