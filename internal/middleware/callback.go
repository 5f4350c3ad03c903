package middleware

import (
	"bytes"
	"io"
	"net/http"

	"crownium_bot/pkg/auth"
	"crownium_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderCallbackToken = "X-Callback-Token"
	HeaderSignature     = "X-Signature"

	maxCallbackBody = 1 << 16
)

type CallbackAuthorization struct {
	mode   auth.CallbackMode
	secret string
}

func NewCallbackAuthorization(mode auth.CallbackMode, secret string) *CallbackAuthorization {
	return &CallbackAuthorization{
		mode:   mode,
		secret: secret,
	}
}

// Verify rejects callbacks that do not prove knowledge of the shared secret.
// In hmac mode the body is read, checked and restored for the handler.
func (a *CallbackAuthorization) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		switch a.mode {
		case auth.CallbackModeNone:
			c.Next()
			return

		case auth.CallbackModeToken:
			if !auth.VerifyToken(a.secret, c.GetHeader(HeaderCallbackToken)) {
				log.Warn("callback rejected: bad token", zap.String("remote", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid callback token"})
				return
			}

		case auth.CallbackModeHMAC:
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
			if err != nil {
				log.Error("failed to read callback body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))

			if !auth.VerifyBodySignature(a.secret, body, c.GetHeader(HeaderSignature)) {
				log.Warn("callback rejected: bad signature", zap.String("remote", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid callback signature"})
				return
			}

		default:
			log.Error("unsupported callback auth mode", zap.String("mode", string(a.mode)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Next()
	}
}
