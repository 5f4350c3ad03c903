package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const (
	expTime = 24 * time.Hour

	// ContextUserKey holds the *TelegramUserData of an authenticated request.
	ContextUserKey = "telegram_user"
)

var ErrMissingUser = errors.New("init data carries no user")

type TelegramAuth struct {
	botToken       string
	skipValidation bool
}

// NewTelegramAuth builds the init-data middleware. With skipValidation the
// hash is not checked and any caller can claim any user.
func NewTelegramAuth(botToken string, skipValidation bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:       botToken,
		skipValidation: skipValidation,
	}
}

// TelegramAuthMiddleware accepts "Authorization: Telegram <init data>" and
// stores the caller in the gin context.
func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Telegram ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		initData := strings.TrimPrefix(authHeader, "Telegram ")
		if !t.skipValidation {
			if err := initdata.Validate(initData, t.botToken, expTime); err != nil {
				log.Info("invalid telegram init data", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
				return
			}
		}

		telegramUserData, err := ExtractTelegramData(initData)
		if err != nil {
			log.Info("failed to extract telegram data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(ContextUserKey, telegramUserData)
		c.Next()
	}
}

type TelegramUserData struct {
	ID           int64
	Username     string
	FirstName    string
	LanguageCode string
	AuthDate     time.Time
}

func ExtractTelegramData(initData string) (*TelegramUserData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	authDateUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, err
	}

	var userData struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LanguageCode string `json:"language_code"`
	}

	if err := json.Unmarshal([]byte(values.Get("user")), &userData); err != nil {
		return nil, err
	}
	if userData.ID == 0 {
		return nil, ErrMissingUser
	}

	return &TelegramUserData{
		ID:           userData.ID,
		Username:     userData.Username,
		FirstName:    userData.FirstName,
		LanguageCode: userData.LanguageCode,
		AuthDate:     time.Unix(authDateUnix, 0).UTC(),
	}, nil
}

// UserFromContext returns the caller stored by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*TelegramUserData)
	return u, ok
}
