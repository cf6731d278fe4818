package flows

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance-bot/internal/app/service"
	"attendance-bot/internal/delivery/telegram/keyboards"
	"attendance-bot/internal/delivery/telegram/middleware"
	"attendance-bot/internal/delivery/telegram/router"
	"attendance-bot/internal/domain"

	"gopkg.in/telebot.v3"
)

// RegisterPayroll вешает на роутер callbacks зарплатного отчёта по филиалу:
// выбор месяца, перелистывание года, сам отчёт. Свёртка выполняется в пуле
// через AsyncService, чтобы не держать горутину обработчика.
func RegisterPayroll(r *router.CallbackRouter, payroll *service.PayrollServiceImpl, async *service.AsyncService, branchID int64, loc *time.Location) {
	r.Register("month_prev", func(c telebot.Context, payload string) error {
		y, _ := strconv.Atoi(payload)
		title, markup := keyboards.BuildMonthKeyboard(y - 1)
		return middleware.EditOrSend(c, title, markup)
	})

	r.Register("month_next", func(c telebot.Context, payload string) error {
		y, _ := strconv.Atoi(payload)
		title, markup := keyboards.BuildMonthKeyboard(y + 1)
		return middleware.EditOrSend(c, title, markup)
	})

	r.Register("pick_month", func(c telebot.Context, payload string) error {
		parts := strings.Split(payload, "-")
		if len(parts) != 2 {
			return nil
		}
		y, _ := strconv.Atoi(parts[0])
		m, _ := strconv.Atoi(parts[1])
		from := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, loc)
		to := time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, loc)

		res, err := async.SubmitAsync(func() (any, error) {
			return payroll.Report(domain.ShiftFilter{BranchID: branchID, From: from, To: to})
		})
		if err != nil {
			return middleware.EditOrSend(c, "Ошибка при расчёте зарплаты: "+err.Error(), nil)
		}
		entries := res.(map[int64]service.PayrollEntry)
		msg := FormatPayroll(fmt.Sprintf("%02d.%04d", m, y), entries)
		return middleware.EditOrSend(c, msg, nil)
	})
}

func FormatPayroll(month string, entries map[int64]service.PayrollEntry) string {
	if len(entries) == 0 {
		return "Смен за " + month + " нет."
	}
	ids := make([]int64, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("Зарплата за " + month + ":\n")
	for _, id := range ids {
		e := entries[id]
		fmt.Fprintf(&b, "%s — %dч %02dм (ночных %dч %02dм), ставка %.0f: %d\n",
			e.Name,
			e.TotalMinutes/60, e.TotalMinutes%60,
			e.NightMinutes/60, e.NightMinutes%60,
			e.HourlyRate, e.EstimatedPay)
	}
	return b.String()
}
