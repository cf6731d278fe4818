package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"attendance-bot/internal/domain"
)

// Моменты времени храним строками RFC3339 (смещение зоны сохраняется),
// дату смены — как YYYY-MM-DD.
const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

type SqliteShiftRepo struct {
	db *sql.DB
}

func NewSqliteShiftRepo(db *sql.DB) *SqliteShiftRepo {
	return &SqliteShiftRepo{db: db}
}

func (r *SqliteShiftRepo) CreateShift(s domain.Shift) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO shifts (branch_id, employee_id, employee_name, shift_date, check_in, check_out, modified_by_admin, regular_minutes, night_minutes, total_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.BranchID,
		s.EmployeeID,
		s.EmployeeName,
		s.ShiftDate,
		s.CheckIn.Format(timeLayout),
		nullableTime(s.CheckOut),
		s.ModifiedByAdmin,
		s.RegularMinutes,
		s.NightMinutes,
		s.TotalMinutes,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertBreaks(tx, id, s.Breaks); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func (r *SqliteShiftRepo) UpdateShift(s domain.Shift) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE shifts SET check_in = ?, check_out = ?, modified_by_admin = ?, regular_minutes = ?, night_minutes = ?, total_minutes = ? WHERE id = ?`,
		s.CheckIn.Format(timeLayout),
		nullableTime(s.CheckOut),
		s.ModifiedByAdmin,
		s.RegularMinutes,
		s.NightMinutes,
		s.TotalMinutes,
		s.ID,
	)
	if err != nil {
		return err
	}
	// Перерывы перезаписываем целиком, чтобы сохранить порядок создания.
	if _, err := tx.Exec(`DELETE FROM shift_breaks WHERE shift_id = ?`, s.ID); err != nil {
		return err
	}
	if err := insertBreaks(tx, s.ID, s.Breaks); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SqliteShiftRepo) GetShiftByID(id int64) (domain.Shift, error) {
	row := r.db.QueryRow(
		`SELECT id, branch_id, employee_id, employee_name, shift_date, check_in, check_out, modified_by_admin, regular_minutes, night_minutes, total_minutes
		 FROM shifts WHERE id = ?`, id)
	s, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shift{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Shift{}, err
	}
	s.Breaks, err = r.loadBreaks(s.ID)
	if err != nil {
		return domain.Shift{}, err
	}
	return s, nil
}

func (r *SqliteShiftRepo) FindOpenShift(branchID, employeeID int64) (domain.Shift, bool, error) {
	row := r.db.QueryRow(
		`SELECT id, branch_id, employee_id, employee_name, shift_date, check_in, check_out, modified_by_admin, regular_minutes, night_minutes, total_minutes
		 FROM shifts WHERE branch_id = ? AND employee_id = ? AND check_out IS NULL ORDER BY id DESC LIMIT 1`,
		branchID, employeeID)
	s, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shift{}, false, nil
	}
	if err != nil {
		return domain.Shift{}, false, err
	}
	s.Breaks, err = r.loadBreaks(s.ID)
	if err != nil {
		return domain.Shift{}, false, err
	}
	return s, true, nil
}

func (r *SqliteShiftRepo) QueryShifts(f domain.ShiftFilter) ([]domain.Shift, error) {
	query := `SELECT id, branch_id, employee_id, employee_name, shift_date, check_in, check_out, modified_by_admin, regular_minutes, night_minutes, total_minutes
		 FROM shifts WHERE shift_date BETWEEN ? AND ?`
	args := []any{f.From.Format(dateLayout), f.To.Format(dateLayout)}
	if f.BranchID != 0 {
		query += ` AND branch_id = ?`
		args = append(args, f.BranchID)
	}
	if f.EmployeeID != 0 {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []domain.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range shifts {
		shifts[i].Breaks, err = r.loadBreaks(shifts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return shifts, nil
}

func (r *SqliteShiftRepo) loadBreaks(shiftID int64) ([]domain.BreakInterval, error) {
	rows, err := r.db.Query(
		`SELECT start_at, end_at FROM shift_breaks WHERE shift_id = ? ORDER BY seq`, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breaks []domain.BreakInterval
	for rows.Next() {
		var startStr string
		var endStr sql.NullString
		if err := rows.Scan(&startStr, &endStr); err != nil {
			return nil, err
		}
		var b domain.BreakInterval
		b.Start, err = time.Parse(timeLayout, startStr)
		if err != nil {
			return nil, err
		}
		if endStr.Valid {
			end, err := time.Parse(timeLayout, endStr.String)
			if err != nil {
				return nil, err
			}
			b.End = &end
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}

func insertBreaks(tx *sql.Tx, shiftID int64, breaks []domain.BreakInterval) error {
	for i, b := range breaks {
		var end any
		if b.End != nil {
			end = b.End.Format(timeLayout)
		}
		if _, err := tx.Exec(
			`INSERT INTO shift_breaks (shift_id, seq, start_at, end_at) VALUES (?, ?, ?, ?)`,
			shiftID, i, b.Start.Format(timeLayout), end,
		); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (domain.Shift, error) {
	var s domain.Shift
	var checkInStr string
	var checkOutStr sql.NullString
	err := row.Scan(
		&s.ID,
		&s.BranchID,
		&s.EmployeeID,
		&s.EmployeeName,
		&s.ShiftDate,
		&checkInStr,
		&checkOutStr,
		&s.ModifiedByAdmin,
		&s.RegularMinutes,
		&s.NightMinutes,
		&s.TotalMinutes,
	)
	if err != nil {
		return domain.Shift{}, err
	}
	s.CheckIn, err = time.Parse(timeLayout, checkInStr)
	if err != nil {
		return domain.Shift{}, err
	}
	if checkOutStr.Valid {
		out, err := time.Parse(timeLayout, checkOutStr.String)
		if err != nil {
			return domain.Shift{}, err
		}
		s.CheckOut = &out
	}
	return s, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}
