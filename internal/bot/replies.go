package bot

import (
	"bytes"
	"fmt"
	"strings"

	"crownium_bot/internal/model"
	"crownium_bot/internal/service"

	"github.com/goccy/go-json"
)

const (
	msgStartFirst     = "❌ Please send /start first."
	msgClickLimit     = "⚠️ 500 clicks/day max reached."
	msgNotEligible    = "🚫 You are not eligible for withdrawal yet."
	msgPayoutWindow   = "✅ You are in the next payout window."
	msgInternalError  = "⚠️ Something went wrong, please try again later."
	leaderboardHeader = "🏆 Top Referrers:\n"
)

func welcomeText(firstName string) string {
	return fmt.Sprintf("Welcome, %s! 🎉\nUse the menu below to interact.", firstName)
}

func clickText(res *service.ClickResult) string {
	return fmt.Sprintf("⛏️ Click registered! (%d/%d) +%d CRM.", res.DailyClicks, service.DailyClickLimit, res.Reward)
}

func balanceText(b *service.Balance) string {
	return fmt.Sprintf("👑 You have %d CRM = R%s", b.Total, b.Secondary)
}

func taskText(offerURL string) string {
	return "🛠️ Complete this offer: " + offerURL
}

func inviteText(botUsername string, telegramID int64) string {
	return fmt.Sprintf("🔗 Invite link: https://t.me/%s?start=%d", botUsername, telegramID)
}

func leaderboardText(top []*model.Referrer) string {
	var sb strings.Builder
	sb.WriteString(leaderboardHeader)
	for i, ref := range top {
		fmt.Fprintf(&sb, "%d. %s — %d\n", i+1, ref.DisplayName(), ref.ReferralCount)
	}
	return sb.String()
}

type meRecord struct {
	UserID    int64   `json:"user_id"`
	Username  *string `json:"username"`
	Name      *string `json:"name"`
	Referrals int     `json:"referrals"`
}

// meText renders the record as indented JSON. Names are printed verbatim, so
// HTML escaping is off.
func meText(u *model.User) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(meRecord{
		UserID:    u.TelegramID,
		Username:  u.Username,
		Name:      u.FirstName,
		Referrals: u.ReferralCount,
	})
	if err != nil {
		return "", err
	}
	return "Your record:\n" + strings.TrimSuffix(buf.String(), "\n"), nil
}
