package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/pkg/response"
	"github.com/oksasatya/expense-tracker/pkg/validation"
)

const msgValidationFailed = "Validation failed"

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindState:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an application error onto the error envelope. Internal
// causes are logged and never reach the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("Internal server error", err)
	}
	status := statusFor(e.Kind)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}).Error(e.Message)
	}
	_ = c.Error(err)

	var details interface{}
	if len(e.Fields) > 0 {
		details = e.Fields
	}
	response.Error(c, status, e.Message, details)
}

func writeBindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, msgValidationFailed, validation.ToDetails(err))
}
