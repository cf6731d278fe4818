package service

import "attendance-bot/internal/domain"

type EmployeeService struct {
	Repo domain.EmployeeRepo
}

func NewEmployeeService(repo domain.EmployeeRepo) *EmployeeService {
	return &EmployeeService{Repo: repo}
}

func (s *EmployeeService) CreateOrUpdateEmployee(e domain.Employee) error {
	return s.Repo.CreateOrUpdateEmployee(e)
}

func (s *EmployeeService) GetAllEmployees() ([]domain.Employee, error) {
	return s.Repo.GetAllEmployees()
}

func (s *EmployeeService) GetEmployeeByID(id int64) (domain.Employee, error) {
	return s.Repo.GetEmployeeByID(id)
}

func (s *EmployeeService) SetHourlyRate(id int64, rate float64) error {
	return s.Repo.SetHourlyRate(id, rate)
}
