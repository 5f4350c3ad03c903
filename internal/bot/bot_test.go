package bot

import (
	"context"
	"errors"
	"testing"

	"crownium_bot/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func textMessage(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 900},
			From: &tgbotapi.User{ID: 42, FirstName: "Alice", UserName: "alice", LanguageCode: "pt"},
		},
	}
}

func startMessage(text string) tgbotapi.Update {
	update := textMessage(text)
	update.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len("/start")},
	}
	return update
}

func TestActionFromUpdate(t *testing.T) {
	tests := []struct {
		name            string
		update          tgbotapi.Update
		expectedOK      bool
		expectedName    string
		expectedPayload string
	}{
		{
			name:       "No message",
			update:     tgbotapi.Update{},
			expectedOK: false,
		},
		{
			name:         "Menu text",
			update:       textMessage("Balance"),
			expectedOK:   true,
			expectedName: ActionBalance,
		},
		{
			name:         "Start without payload",
			update:       startMessage("/start"),
			expectedOK:   true,
			expectedName: ActionStart,
		},
		{
			name:            "Start with payload",
			update:          startMessage("/start 12345"),
			expectedOK:      true,
			expectedName:    ActionStart,
			expectedPayload: "12345",
		},
		{
			name:         "Start typed without command entity",
			update:       textMessage("/start 12345"),
			expectedOK:   true,
			expectedName: "/start 12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := ActionFromUpdate(tt.update)
			assert.Equal(t, tt.expectedOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.expectedName, a.Name)
			assert.Equal(t, tt.expectedPayload, a.Payload)
			assert.Equal(t, int64(900), a.ChatID)
			assert.Equal(t, int64(42), a.Identity.TelegramID)
			assert.Equal(t, "pt", a.Identity.LanguageCode)
		})
	}
}

func TestBot_HandleUpdate(t *testing.T) {
	repo := repository.NewMemory()
	sender := &fakeSender{}
	b := &Bot{sender: sender, router: newTestRouter(t, repo)}

	b.handleUpdate(context.Background(), startMessage("/start"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(900), sender.sent[0].ChatID)
	assert.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, sender.sent[0].ReplyMarkup)

	b.handleUpdate(context.Background(), textMessage("Click"))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "⛏️ Click registered! (1/500) +10 CRM.", sender.sent[1].Text)
	assert.Nil(t, sender.sent[1].ReplyMarkup)

	u, err := repo.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "pt", u.Locale)

	b.handleUpdate(context.Background(), textMessage("what is this"))
	assert.Len(t, sender.sent, 2)
}

func TestBot_HandleUpdateSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	b := &Bot{sender: sender, router: newTestRouter(t, repository.NewMemory())}

	assert.NotPanics(t, func() {
		b.handleUpdate(context.Background(), textMessage("Invite"))
	})
	assert.Len(t, sender.sent, 1)
}

func TestMainMenuKeyboard(t *testing.T) {
	kb := MainMenuKeyboard()

	assert.True(t, kb.ResizeKeyboard)
	assert.False(t, kb.OneTimeKeyboard)
	require.Len(t, kb.Keyboard, 4)

	var labels []string
	for _, row := range kb.Keyboard {
		for _, button := range row {
			labels = append(labels, button.Text)
		}
	}
	assert.Equal(t, []string{"Click", "Balance", "Task", "Withdraw", "Invite", "Leaderboard", "Me"}, labels)
}
