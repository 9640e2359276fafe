package http_util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	"github.com/ghaniswara/dharmasaathi/pkg/validator"
	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	pkgErrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Property string `json:"property"`
	Detail   string `json:"detail"`
}

type HTTPResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type HTTPErrorResponse[T any] struct {
	HTTPResponse[T]
	Errors []ErrorResponse `json:"errors"`
}

// ErrorBody is the flat error envelope of the swipe, payment and admin endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}

func Encode[T any](c echo.Context, status int, v T) error {
	return c.JSON(status, v)
}

// Decode binds the request and runs the registered echo validator.
// Failures are reported as entity.ErrValidation.
func Decode[T any](c echo.Context) (T, error) {
	var v T
	if err := c.Bind(&v); err != nil {
		return v, pkgErrors.Wrap(entity.ErrValidation, "invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&v); err != nil {
			return v, pkgErrors.Wrap(entity.ErrValidation, validator.Describe(err))
		}
	}
	return v, nil
}

func DecodeBody[T any](body []byte, v T) (T, error) {
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Problems flattens a per-field problems map into a stable list.
func Problems(problems map[string][]string) []ErrorResponse {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ErrorResponse, 0, len(problems))
	for _, k := range keys {
		for _, detail := range problems[k] {
			out = append(out, ErrorResponse{Property: k, Detail: detail})
		}
	}
	return out
}

// ValidateRequest writes a 400 with the request's problems and reports whether it was valid.
func ValidateRequest[T validator.Validate](c echo.Context, v T) (bool, error) {
	problems := v.Validate(c.Request().Context())
	if len(problems) == 0 {
		return true, nil
	}
	return false, c.JSON(http.StatusBadRequest, HTTPErrorResponse[any]{
		HTTPResponse: HTTPResponse[any]{Message: "Bad Request"},
		Errors:       Problems(problems),
	})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{entity.ErrUnauthenticated, http.StatusUnauthorized},
	{entity.ErrUnauthorized, http.StatusForbidden},
	{entity.ErrValidation, http.StatusBadRequest},
	{entity.ErrInvalidSignature, http.StatusBadRequest},
	{entity.ErrUserNotFound, http.StatusNotFound},
	{entity.ErrLimitReached, http.StatusTooManyRequests},
	{entity.ErrAlreadySwiped, http.StatusBadRequest},
	{entity.ErrNoSuperlikesAvailable, http.StatusBadRequest},
	{entity.ErrAlreadyExists, http.StatusConflict},
}

// StatusFor maps a domain error to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Fail writes {"error": ...} for err. Internal errors are logged and hidden from the client.
func Fail(c echo.Context, err error) error {
	status := StatusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
			"error":  err,
		}).Error("request failed")
		message = entity.ErrInternal.Error()
	}

	return c.JSON(status, ErrorBody{Error: message})
}
