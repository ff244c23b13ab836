package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperr "cardregistry/internal/errors"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Data    any    `json:"data"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func success(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, Response{Data: data, Status: true, Message: message})
}

func failure(c echo.Context, err error) error {
	httpErr := apperr.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logrus.WithError(err).
			WithField("path", c.Path()).
			Error("request failed")
	}
	return c.JSON(httpErr.StatusCode, Response{Message: httpErr.Message})
}

// ErrorHandler renders errors that escape handlers (routing, middleware,
// panics recovered by echo) in the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = http.StatusText(code)
		}
	} else {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, Response{Message: message})
}
