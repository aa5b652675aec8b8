package telegram

import "gopkg.in/telebot.v3"

// Client sends messages through the Telegram bot.
// It keeps the application layer independent of the bot library's Bot type.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}

// CallbackRecompute is the unique id of the inline "Recompute" button.
const CallbackRecompute = "recompute"
