package telegram

import (
	"errors"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}

// replyKeyboard builds the persistent keyboard shown under the input field.
// It returns nil for an empty layout so the current keyboard stays untouched.
func replyKeyboard(rows [][]string) any {
	if len(rows) == 0 {
		return nil
	}
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			r = append(r, tgbotapi.NewKeyboardButton(text))
		}
		buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(r...))
	}
	return tgbotapi.NewReplyKeyboard(buttons...)
}

// redact strips the request URL, which carries the bot token, from transport
// errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
