package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	BranchID      int64
	DBPath        string
	// Location — часовой пояс магазина; по нему классифицируются
	// ночные часы (22:00–05:00) и определяется дата смены.
	Location *time.Location
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, ErrNoVar{"TELEGRAM_TOKEN"}
	}
	branchID, err := strconv.ParseInt(os.Getenv("BRANCH_ID"), 10, 64)
	if err != nil || branchID <= 0 {
		return nil, ErrNoVar{"BRANCH_ID"}
	}
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "attendance-bot.db"
	}
	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &Config{
		TelegramToken: token,
		BranchID:      branchID,
		DBPath:        dbPath,
		Location:      loc,
	}, nil
}

type ErrNoVar struct {
	Name string
}

func (e ErrNoVar) Error() string {
	return e.Name + " не задан в окружении"
}
