package keyboards

import (
	"fmt"
	"strconv"

	"gopkg.in/telebot.v3"
)

var shortMonths = []string{"Янв", "Фев", "Мар", "Апр", "Май", "Июн", "Июл", "Авг", "Сен", "Окт", "Ноя", "Дек"}

// BuildMonthKeyboard — клавиатура выбора месяца для зарплатного отчёта.
// pick_month несёт payload "ГГГГ-ММ", стрелки листают год.
func BuildMonthKeyboard(year int) (string, *telebot.ReplyMarkup) {
	markup := &telebot.ReplyMarkup{}

	var rows []telebot.Row
	row := telebot.Row{}
	for i, name := range shortMonths {
		row = append(row, markup.Data(name, "pick_month", fmt.Sprintf("%04d-%02d", year, i+1)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = telebot.Row{}
		}
	}

	prev := markup.Data("← "+strconv.Itoa(year-1), "month_prev", strconv.Itoa(year))
	next := markup.Data(strconv.Itoa(year+1)+" →", "month_next", strconv.Itoa(year))
	rows = append(rows, markup.Row(prev, next))

	markup.Inline(rows...)
	title := fmt.Sprintf("Отчёт: выберите месяц %d года", year)
	return title, markup
}
