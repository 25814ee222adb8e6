package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
)

const (
	btnStats      = "📊 Dashboard"
	btnReports    = "📥 Export report"
	btnCirculars  = "📢 Circulars"
	btnAttendance = "🗓 My attendance"
	btnResults    = "🎓 My results"
	btnFees       = "💳 My fees"
)

var menuCommands = map[string]string{
	btnStats:      "stats",
	btnReports:    "report",
	btnCirculars:  "circulars",
	btnAttendance: "attendance",
	btnResults:    "results",
	btnFees:       "fees",
}

// RoleMenu возвращает меню в зависимости от роли пользователя
func RoleMenu(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	switch role {
	case models.RoleAdmin:
		return adminMenu()
	case models.RoleFaculty:
		return facultyMenu()
	case models.RoleStudent:
		return studentMenu()
	default:
		return tgbotapi.NewReplyKeyboard() // пустое меню
	}
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnReports),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCirculars),
		),
	)
}

func facultyMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnCirculars),
		),
	)
}

func studentMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAttendance),
			tgbotapi.NewKeyboardButton(btnResults),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnFees),
			tgbotapi.NewKeyboardButton(btnCirculars),
		),
	)
}

const reportCallbackPrefix = "report:"

func reportKeyboard(types []report.Type) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(types))
	for _, t := range types {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title(), reportCallbackPrefix+string(t)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
