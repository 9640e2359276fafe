package routesAPIPayment

import (
	"net/http"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/middleware"
	paymentUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/payment"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
)

type verifyFailure struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error"`
}

func OrderHandler(c echo.Context, paymentCase paymentUseCase.IPaymentUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	req, err := http_util.Decode[entity.CreateOrderRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	order, err := paymentCase.CreateOrder(c.Request().Context(), user, req)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, order)
}

func VerifyHandler(c echo.Context, paymentCase paymentUseCase.IPaymentUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	req, err := http_util.Decode[entity.VerifyPaymentRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	resp, err := paymentCase.VerifyPayment(c.Request().Context(), user, req)
	if errors.Is(err, entity.ErrInvalidSignature) {
		return http_util.Encode(c, http.StatusBadRequest, verifyFailure{Verified: false, Error: err.Error()})
	}
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, resp)
}

// ActionHandler serves /api/payments/:action for clients that post to a single endpoint.
func ActionHandler(c echo.Context, paymentCase paymentUseCase.IPaymentUseCase) error {
	switch c.Param("action") {
	case "verify":
		return VerifyHandler(c, paymentCase)
	case "order":
		return OrderHandler(c, paymentCase)
	default:
		return http_util.Encode(c, http.StatusNotFound, http_util.ErrorBody{Error: "unknown payment action"})
	}
}
