package utils

import (
	"net/http"

	"audioscribe/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Success(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"error": msg,
	})
}

// Fail writes the stable message for err with its mapped status. The cause
// chain is logged and never sent to the client.
func Fail(c *gin.Context, log zerolog.Logger, err error) {
	appErr := apperr.From(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = apperr.StatusFor(appErr.Code)
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(appErr.Cause).
		Fields(appErr.Details).
		Str("code", string(appErr.Code)).
		Int("status", status).
		Str("path", c.FullPath()).
		Msg(appErr.Message)

	Error(c, status, appErr.Message)
}
