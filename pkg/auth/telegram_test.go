package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initData(user string) string {
	v := url.Values{}
	v.Set("auth_date", "1677649900")
	v.Set("user", user)
	v.Set("hash", "e2e58")
	return v.Encode()
}

func TestExtractTelegramData(t *testing.T) {
	data, err := ExtractTelegramData(initData(`{"id":5060715466,"first_name":"Bob","username":"defi_master","language_code":"en"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5060715466), data.ID)
	assert.Equal(t, "defi_master", data.Username)
	assert.Equal(t, "Bob", data.FirstName)
	assert.Equal(t, int64(1677649900), data.AuthDate.Unix())

	_, err = ExtractTelegramData(initData(`{"first_name":"Bob"}`))
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = ExtractTelegramData("auth_date=abc")
	assert.Error(t, err)
}

func TestTelegramAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(a *TelegramAuth) *gin.Engine {
		r := gin.New()
		r.GET("/me", a.TelegramAuthMiddleware(), func(c *gin.Context) {
			u, ok := UserFromContext(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": u.ID})
		})
		return r
	}

	tests := []struct {
		name       string
		auth       *TelegramAuth
		header     string
		wantStatus int
	}{
		{
			name:       "Missing header",
			auth:       NewTelegramAuth("token", true),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			auth:       NewTelegramAuth("token", true),
			header:     "Bearer abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Debug mode skips signature",
			auth:       NewTelegramAuth("token", true),
			header:     "Telegram " + initData(`{"id":7}`),
			wantStatus: http.StatusOK,
		},
		{
			name:       "Bad signature",
			auth:       NewTelegramAuth("token", false),
			header:     "Telegram " + initData(`{"id":7}`),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "No user in init data",
			auth:       NewTelegramAuth("token", true),
			header:     "Telegram auth_date=1",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			newRouter(tt.auth).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
