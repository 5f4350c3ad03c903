package api

import (
	"errors"
	"net/http"

	"crownium_bot/internal/service"
	"crownium_bot/pkg/auth"
	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.TelegramAuth
}

// NewUserRoutes mounts the read-only API used by the mini app.
func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/me", r.GetMe)
		h.GET("/leaderboard", r.GetLeaderboard)
	}
}

type MeResponse struct {
	TelegramID          int64   `json:"telegram_id"`
	Username            *string `json:"username"`
	FirstName           *string `json:"first_name"`
	ClickCrownium       int64   `json:"click_crownium"`
	TaskCrownium        int64   `json:"task_crownium"`
	TotalCrownium       int64   `json:"total_crownium"`
	SecondaryDisplay    string  `json:"secondary_display"`
	DailyClicks         int     `json:"daily_clicks"`
	DailyClickLimit     int     `json:"daily_click_limit"`
	TasksCompleted      int     `json:"tasks_completed"`
	ReferralCount       int     `json:"referral_count"`
	IsEligibleForPayout bool    `json:"is_eligible_for_payout"`
}

func (r *userRoutes) GetMe(c *gin.Context) {
	log := logger.Logger()

	tgUser, ok := auth.UserFromContext(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), tgUser.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "send /start to the bot first"})
			return
		}
		log.Error("failed to get user", zap.Error(err), zap.Int64("telegram_id", tgUser.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	total := user.TotalCrownium()
	c.JSON(http.StatusOK, MeResponse{
		TelegramID:          user.TelegramID,
		Username:            user.Username,
		FirstName:           user.FirstName,
		ClickCrownium:       user.TotalClickCrownium,
		TaskCrownium:        user.TotalTaskCrownium,
		TotalCrownium:       total,
		SecondaryDisplay:    service.SecondaryDisplay(total),
		DailyClicks:         user.DailyClickCount,
		DailyClickLimit:     service.DailyClickLimit,
		TasksCompleted:      user.TasksCompletedCount,
		ReferralCount:       user.ReferralCount,
		IsEligibleForPayout: user.IsEligibleForPayout,
	})
}

type leaderboardEntry struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	ReferralCount int    `json:"referral_count"`
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	top, err := r.us.Leaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]leaderboardEntry, len(top))
	for i, ref := range top {
		out[i] = leaderboardEntry{
			Rank:          i + 1,
			Name:          ref.DisplayName(),
			ReferralCount: ref.ReferralCount,
		}
	}

	c.JSON(http.StatusOK, out)
}
