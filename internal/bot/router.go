package bot

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"crownium_bot/internal/metrics"
	"crownium_bot/internal/model"
	"crownium_bot/internal/service"
	"crownium_bot/pkg/logger"

	"go.uber.org/zap"
)

// Menu labels double as action names: the router matches message text
// exactly, case-sensitive.
const (
	ActionStart       = "/start"
	ActionClick       = "Click"
	ActionBalance     = "Balance"
	ActionTask        = "Task"
	ActionWithdraw    = "Withdraw"
	ActionInvite      = "Invite"
	ActionLeaderboard = "Leaderboard"
	ActionMe          = "Me"
)

type Action struct {
	Name     string
	ChatID   int64
	Identity model.Identity
	Payload  string
}

type Reply struct {
	Text     string
	WithMenu bool
}

type handlerFunc func(ctx context.Context, a Action) (*Reply, error)

type Router struct {
	users       service.UserServiceI
	botUsername string
	offerURL    *url.URL
	metrics     *metrics.Metrics
	handlers    map[string]handlerFunc
}

func NewRouter(users service.UserServiceI, botUsername, offerURL string, m *metrics.Metrics) (*Router, error) {
	offer, err := url.Parse(offerURL)
	if err != nil {
		return nil, err
	}

	r := &Router{
		users:       users,
		botUsername: botUsername,
		offerURL:    offer,
		metrics:     m,
	}
	r.handlers = map[string]handlerFunc{
		ActionStart:       r.start,
		ActionClick:       r.click,
		ActionBalance:     r.balance,
		ActionTask:        r.task,
		ActionWithdraw:    r.withdraw,
		ActionInvite:      r.invite,
		ActionLeaderboard: r.leaderboard,
		ActionMe:          r.me,
	}

	return r, nil
}

// Dispatch runs the handler bound to the action. Unknown actions return a nil
// reply and no error.
func (r *Router) Dispatch(ctx context.Context, a Action) (*Reply, error) {
	log := logger.Logger()

	h, ok := r.handlers[a.Name]
	if !ok {
		return nil, nil
	}

	reply, err := h(ctx, a)
	switch {
	case err == nil:
		r.metrics.RecordAction(a.Name, "ok")
		return reply, nil
	case errors.Is(err, service.ErrUserNotFound):
		r.metrics.RecordAction(a.Name, "no_user")
		return &Reply{Text: msgStartFirst}, nil
	case errors.Is(err, service.ErrDailyClickLimit):
		r.metrics.RecordAction(a.Name, "limit")
		return &Reply{Text: msgClickLimit}, nil
	case errors.Is(err, service.ErrNotEligible):
		r.metrics.RecordAction(a.Name, "ineligible")
		return &Reply{Text: msgNotEligible}, nil
	}

	r.metrics.RecordAction(a.Name, "error")
	log.Error("Failed to handle action",
		zap.String("action", a.Name),
		zap.Int64("telegram_id", a.Identity.TelegramID),
		zap.Error(err),
	)
	return &Reply{Text: msgInternalError}, err
}

func (r *Router) start(ctx context.Context, a Action) (*Reply, error) {
	log := logger.Logger()

	res, err := r.users.Start(ctx, a.Identity, a.Payload)
	if err != nil {
		return nil, err
	}
	if res.Created {
		log.Info("User registered",
			zap.Int64("telegram_id", a.Identity.TelegramID),
			zap.Bool("referred", res.Referred),
		)
	}

	return &Reply{Text: welcomeText(a.Identity.FirstName), WithMenu: true}, nil
}

func (r *Router) click(ctx context.Context, a Action) (*Reply, error) {
	res, err := r.users.Click(ctx, a.Identity.TelegramID)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordMinted("click", res.Reward)

	return &Reply{Text: clickText(res)}, nil
}

func (r *Router) balance(ctx context.Context, a Action) (*Reply, error) {
	b, err := r.users.Balance(ctx, a.Identity.TelegramID)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: balanceText(b)}, nil
}

// task needs no stored record: the offer link only carries the caller's id.
func (r *Router) task(_ context.Context, a Action) (*Reply, error) {
	return &Reply{Text: taskText(r.offerLink(a.Identity.TelegramID))}, nil
}

func (r *Router) withdraw(ctx context.Context, a Action) (*Reply, error) {
	err := r.users.Withdraw(ctx, a.Identity.TelegramID)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: msgPayoutWindow}, nil
}

func (r *Router) invite(_ context.Context, a Action) (*Reply, error) {
	return &Reply{Text: inviteText(r.botUsername, a.Identity.TelegramID)}, nil
}

func (r *Router) leaderboard(ctx context.Context, _ Action) (*Reply, error) {
	top, err := r.users.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: leaderboardText(top)}, nil
}

func (r *Router) me(ctx context.Context, a Action) (*Reply, error) {
	u, err := r.users.GetUserByTelegramID(ctx, a.Identity.TelegramID)
	if err != nil {
		return nil, err
	}

	text, err := meText(u)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: text}, nil
}

func (r *Router) offerLink(telegramID int64) string {
	link := *r.offerURL
	q := link.Query()
	q.Set("uid", strconv.FormatInt(telegramID, 10))
	link.RawQuery = q.Encode()
	return link.String()
}
