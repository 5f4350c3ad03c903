package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ActionClick),
			tgbotapi.NewKeyboardButton(ActionBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ActionTask),
			tgbotapi.NewKeyboardButton(ActionWithdraw),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ActionInvite),
			tgbotapi.NewKeyboardButton(ActionLeaderboard),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ActionMe),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false

	return kb
}
