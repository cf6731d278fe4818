package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"attendance-bot/internal/app/service"
	"attendance-bot/internal/delivery/telegram/flows"
	"attendance-bot/internal/delivery/telegram/keyboards"
	"attendance-bot/internal/delivery/telegram/middleware"
	"attendance-bot/internal/delivery/telegram/router"
	"attendance-bot/internal/domain"
	"attendance-bot/pkg/calendar"

	"gopkg.in/telebot.v3"
)

const editTimeLayout = "02.01.2006 15:04"

type Handler struct {
	Bot        *telebot.Bot
	Attendance domain.AttendanceService
	Shifts     domain.ShiftRepo
	Payroll    *service.PayrollServiceImpl
	Async      *service.AsyncService
	Employees  *service.EmployeeService
	Calendar   *calendar.CalendarController
	Router     *router.CallbackRouter
	BranchID   int64
	Loc        *time.Location

	edits editState // chatID -> shiftID: ждём новое время ухода
}

// editState — ожидание ввода от чата. telebot обрабатывает каждый апдейт
// в своей горутине, поэтому доступ к карте под мьютексом.
type editState struct {
	mu      sync.Mutex
	pending map[int64]int64
}

func (s *editState) set(chatID, shiftID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = make(map[int64]int64)
	}
	s.pending[chatID] = shiftID
}

func (s *editState) get(chatID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pending[chatID]
	return id, ok
}

func (s *editState) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, chatID)
}

var (
	btnClockIn    = telebot.Btn{Text: "🟢 Начать смену"}
	btnClockOut   = telebot.Btn{Text: "🔴 Завершить смену"}
	btnBreakStart = telebot.Btn{Text: "☕ Начать перерыв"}
	btnBreakEnd   = telebot.Btn{Text: "▶️ Закончить перерыв"}
	btnMyHours    = telebot.Btn{Text: "💰 Мои часы за месяц"}
)

func (h *Handler) Register() {
	h.Bot.Handle("/start", h.handleStart)
	h.Bot.Handle("/employees", h.handleEmployees)
	h.Bot.Handle("/setrate", h.handleSetRate)
	h.Bot.Handle("/shifts", h.handleShiftsDay)
	h.Bot.Handle("/payroll", h.handlePayrollMenu)

	flows.RegisterPayroll(h.Router, h.Payroll, h.Async, h.BranchID, h.Loc)
	h.Router.Register("edit_out", h.handleEditOutCallback)
	h.Router.CalDelegate = h.handleCalendarCallback
	h.Calendar.OnDate = h.handleDayView
	h.Router.Attach(h.Bot)

	h.Bot.Handle(telebot.OnText, h.handleText)
}

func (h *Handler) handleStart(c telebot.Context) error {
	empID := int64(c.Sender().ID)
	if _, err := h.Employees.GetEmployeeByID(empID); err != nil {
		// Сотрудник не найден — регистрируем по данным Telegram.
		_ = h.Employees.CreateOrUpdateEmployee(employeeFromContext(c))
	}
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Text(btnClockIn.Text), markup.Text(btnClockOut.Text)),
		markup.Row(markup.Text(btnBreakStart.Text), markup.Text(btnBreakEnd.Text)),
		markup.Row(markup.Text(btnMyHours.Text)),
	)
	return c.Send("Добро пожаловать! Отмечайте приход и уход кнопками ниже.", markup)
}

func (h *Handler) handleText(c telebot.Context) error {
	chatID := c.Chat().ID
	empID := int64(c.Sender().ID)

	// Ожидается новое время ухода для правки смены администратором.
	if shiftID, ok := h.edits.get(chatID); ok {
		t, err := time.ParseInLocation(editTimeLayout, c.Text(), h.Loc)
		if err != nil {
			return c.Send("Некорректное время. Формат: ДД.ММ.ГГГГ ЧЧ:ММ")
		}
		h.edits.clear(chatID)
		sh, err := h.Attendance.AdminUpdateShift(shiftID, domain.ShiftUpdate{CheckOut: &t})
		if err != nil {
			return c.Send(userMessage(err))
		}
		return c.Send("Смена №" + strconv.FormatInt(sh.ID, 10) + " исправлена. " + shiftSummary(sh, h.Loc))
	}

	switch c.Text() {
	case btnClockIn.Text:
		sh, err := h.Attendance.ClockIn(h.BranchID, empID, senderName(c))
		if err != nil {
			return c.Send(userMessage(err))
		}
		return c.Send("Смена начата в " + sh.CheckIn.In(h.Loc).Format("15:04") + ".")
	case btnClockOut.Text:
		sh, err := h.Attendance.ClockOut(h.BranchID, empID)
		if err != nil {
			return c.Send(userMessage(err))
		}
		return c.Send("Смена завершена. " + shiftSummary(sh, h.Loc))
	case btnBreakStart.Text:
		sh, err := h.Attendance.StartBreak(h.BranchID, empID)
		if err != nil {
			return c.Send(userMessage(err))
		}
		b := sh.OpenBreak()
		return c.Send("Перерыв начат в " + b.Start.In(h.Loc).Format("15:04") + ".")
	case btnBreakEnd.Text:
		sh, err := h.Attendance.EndBreak(h.BranchID, empID)
		if err != nil {
			return c.Send(userMessage(err))
		}
		return c.Send("Перерыв закончен. Всего перерывов: " + fmtMinutes(sh.BreakMinutes()) + ".")
	case btnMyHours.Text:
		return h.sendMonthReport(c, empID)
	}
	return nil
}

func (h *Handler) sendMonthReport(c telebot.Context, empID int64) error {
	now := time.Now().In(h.Loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.Loc)
	to := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, h.Loc)
	res, err := h.Async.SubmitAsync(func() (any, error) {
		return h.Payroll.Report(domain.ShiftFilter{BranchID: h.BranchID, EmployeeID: empID, From: from, To: to})
	})
	if err != nil {
		return c.Send("Ошибка при расчёте: " + err.Error())
	}
	entries := res.(map[int64]service.PayrollEntry)
	e, ok := entries[empID]
	if !ok {
		return c.Send("Смен за этот месяц нет.")
	}
	msg := fmt.Sprintf("За %02d.%04d: %s, из них ночных %s. Расчётная зарплата: %d",
		int(now.Month()), now.Year(), fmtMinutes(e.TotalMinutes), fmtMinutes(e.NightMinutes), e.EstimatedPay)
	return c.Send(msg)
}

func (h *Handler) handlePayrollMenu(c telebot.Context) error {
	title, markup := keyboards.BuildMonthKeyboard(time.Now().In(h.Loc).Year())
	return c.Send(title, markup)
}

func (h *Handler) handleEmployees(c telebot.Context) error {
	employees, err := h.Employees.GetAllEmployees()
	if err != nil {
		return c.Send("Ошибка при получении сотрудников: " + err.Error())
	}
	if len(employees) == 0 {
		return c.Send("Сотрудники не найдены.")
	}
	msg := "Список сотрудников:\n"
	for _, e := range employees {
		msg += fmt.Sprintf("ID: %d, %s (%s), ставка %.0f\n", e.ID, e.Name, e.Role, e.HourlyRate)
	}
	return c.Send(msg)
}

// /setrate <id сотрудника> <ставка в час>
func (h *Handler) handleSetRate(c telebot.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Использование: /setrate <id сотрудника> <ставка>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Некорректный id сотрудника.")
	}
	rate, err := strconv.ParseFloat(args[1], 64)
	if err != nil || rate < 0 {
		return c.Send("Некорректная ставка.")
	}
	if err := h.Employees.SetHourlyRate(id, rate); err != nil {
		return c.Send(userMessage(err))
	}
	return c.Send("Ставка обновлена.")
}

// /shifts — календарь, по выбранной дате список смен филиала за день
// с кнопкой правки времени ухода.
func (h *Handler) handleShiftsDay(c telebot.Context) error {
	return h.Calendar.ShowCalendar(c)
}

func (h *Handler) handleDayView(date time.Time, c telebot.Context) error {
	day := date.In(h.Loc)
	shifts, err := h.Shifts.QueryShifts(domain.ShiftFilter{
		BranchID: h.BranchID,
		From:     day,
		To:       day,
	})
	if err != nil {
		return middleware.EditOrSend(c, "Ошибка при получении смен: "+err.Error(), nil)
	}
	if len(shifts) == 0 {
		return middleware.EditOrSend(c, "Смен за "+day.Format("02.01.2006")+" нет.", nil)
	}
	msg := "Смены за " + day.Format("02.01.2006") + ":\n"
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for _, sh := range shifts {
		msg += shiftLine(sh, h.Loc) + "\n"
		btn := markup.Data("✏️ Уход №"+strconv.FormatInt(sh.ID, 10), "edit_out", strconv.FormatInt(sh.ID, 10))
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)
	return middleware.EditOrSend(c, msg, markup)
}

func (h *Handler) handleEditOutCallback(c telebot.Context, payload string) error {
	shiftID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil
	}
	h.edits.set(c.Chat().ID, shiftID)
	log.Printf("[state] waitingEdit chat=%d shift=%d", c.Chat().ID, shiftID)
	return c.Send("Введите новое время ухода (ДД.ММ.ГГГГ ЧЧ:ММ):")
}

// Делегат календарных callback'ов (cal_day, cal_prev, cal_next).
func (h *Handler) handleCalendarCallback(c telebot.Context) error {
	raw := strings.TrimPrefix(c.Data(), "\f")
	split := strings.SplitN(raw, "|", 2)
	if len(split) != 2 {
		return nil
	}
	payload := split[1]
	switch split[0] {
	case "cal_day":
		parts := calendar.SplitDateData(payload)
		if len(parts) != 3 {
			return nil
		}
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		year, _ := strconv.Atoi(parts[2])
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, h.Loc)
		if h.Calendar.OnDate != nil {
			return h.Calendar.OnDate(date, c)
		}
		return nil
	case "cal_prev", "cal_next":
		parts := calendar.SplitDateData(payload)
		if len(parts) != 2 {
			return nil
		}
		month, _ := strconv.Atoi(parts[0])
		year, _ := strconv.Atoi(parts[1])
		return calendar.SendCalendar(c, year, month)
	}
	return nil
}

func employeeFromContext(c telebot.Context) domain.Employee {
	return domain.Employee{
		ID:     int64(c.Sender().ID),
		Name:   senderName(c),
		ChatID: c.Chat().ID,
		Role:   "employee",
	}
}

func senderName(c telebot.Context) string {
	name := c.Sender().FirstName
	if c.Sender().LastName != "" {
		name += " " + c.Sender().LastName
	}
	return name
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrShiftAlreadyOpen):
		return "Смена уже открыта. Сначала завершите её."
	case errors.Is(err, domain.ErrNotClockedIn):
		return "Нет открытой смены."
	case errors.Is(err, domain.ErrAlreadyOnBreak):
		return "Перерыв уже идёт."
	case errors.Is(err, domain.ErrNotOnBreak):
		return "Перерыв не начат."
	case errors.Is(err, domain.ErrNotFound):
		return "Запись не найдена."
	case errors.Is(err, domain.ErrValidation):
		return "Некорректные данные смены."
	default:
		return "Ошибка: " + err.Error()
	}
}

func fmtMinutes(min int) string {
	return fmt.Sprintf("%dч %02dм", min/60, min%60)
}

func shiftSummary(sh domain.Shift, loc *time.Location) string {
	msg := "Отработано " + fmtMinutes(sh.TotalMinutes)
	if sh.NightMinutes > 0 {
		msg += ", из них ночных " + fmtMinutes(sh.NightMinutes)
	}
	msg += ". Перерывы: " + fmtMinutes(sh.BreakMinutes()) + "."
	if sh.CheckOut != nil {
		msg += " Уход: " + sh.CheckOut.In(loc).Format("15:04") + "."
	}
	return msg
}

func shiftLine(sh domain.Shift, loc *time.Location) string {
	out := "…"
	if sh.CheckOut != nil {
		out = sh.CheckOut.In(loc).Format("15:04")
	}
	line := fmt.Sprintf("№%d %s %s–%s (%s)",
		sh.ID, sh.EmployeeName, sh.CheckIn.In(loc).Format("15:04"), out, fmtMinutes(sh.TotalMinutes))
	if sh.ModifiedByAdmin {
		line += " ✏️"
	}
	return line
}
