package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
)

func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			}
			if user, ok := c.Get(userProfileKey).(*entity.User); ok && user != nil {
				fields["user_id"] = user.ID
			}
			logger.Log.WithFields(fields).Info("request")

			return nil
		}
	}
}

// Recover turns a panicking handler into a 500 and logs the panic.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Log.WithFields(logrus.Fields{
						"method": c.Request().Method,
						"path":   c.Path(),
						"panic":  fmt.Sprint(r),
						"stack":  string(debug.Stack()),
					}).Error("handler panicked")
					err = c.JSON(http.StatusInternalServerError, map[string]string{"error": entity.ErrInternal.Error()})
				}
			}()
			return next(c)
		}
	}
}
