package sqlite

import (
	"database/sql"
)

const createShiftsTable = `
CREATE TABLE IF NOT EXISTS shifts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    branch_id INTEGER NOT NULL,
    employee_id INTEGER NOT NULL,
    employee_name TEXT NOT NULL,
    shift_date TEXT NOT NULL,
    check_in TEXT NOT NULL,
    check_out TEXT,
    modified_by_admin BOOLEAN NOT NULL DEFAULT 0,
    regular_minutes INTEGER NOT NULL DEFAULT 0,
    night_minutes INTEGER NOT NULL DEFAULT 0,
    total_minutes INTEGER NOT NULL DEFAULT 0
);
`

const createShiftBreaksTable = `
CREATE TABLE IF NOT EXISTS shift_breaks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    shift_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    start_at TEXT NOT NULL,
    end_at TEXT
);
`

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    chat_id INTEGER NOT NULL,
    role TEXT NOT NULL,
    hourly_rate REAL NOT NULL DEFAULT 0
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(createShiftsTable); err != nil {
		return err
	}
	if _, err := db.Exec(createShiftBreaksTable); err != nil {
		return err
	}
	if _, err := db.Exec(createEmployeesTable); err != nil {
		return err
	}
	return nil
}
