package main

import (
	"database/sql"
	"log"

	"attendance-bot/config"
	"attendance-bot/internal/app/service"
	"attendance-bot/internal/delivery/telegram"
	"attendance-bot/internal/delivery/telegram/router"
	"attendance-bot/internal/repository/sqlite"
	"attendance-bot/pkg/calendar"
	"attendance-bot/pkg/workerpool"

	"gopkg.in/telebot.v3"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	log.Println("Запуск Attendance Bot...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфига: %v", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Fatalf("Ошибка миграции: %v", err)
	}

	pool := workerpool.NewWorkerPool(4, 32)
	defer pool.Close()

	shiftRepo := sqlite.NewSqliteShiftRepo(db)
	employeeRepo := sqlite.NewSqliteEmployeeRepo(db)

	attendance := service.NewAttendanceService(shiftRepo, cfg.Location)
	payroll := service.NewPayrollService(shiftRepo, employeeRepo)

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("Ошибка запуска бота: %v", err)
	}

	handler := &telegram.Handler{
		Bot:        bot,
		Attendance: attendance,
		Shifts:     shiftRepo,
		Payroll:    payroll,
		Async:      service.NewAsyncService(pool),
		Employees:  service.NewEmployeeService(employeeRepo),
		Calendar:   &calendar.CalendarController{Bot: bot},
		Router:     router.New(),
		BranchID:   cfg.BranchID,
		Loc:        cfg.Location,
	}
	handler.Register()

	log.Printf("Бот запущен, филиал %d", cfg.BranchID)
	bot.Start()
}
