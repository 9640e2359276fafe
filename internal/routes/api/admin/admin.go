package routesAPIAdmin

import (
	"net/http"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	adminUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/admin"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/labstack/echo"
)

func DashboardHandler(c echo.Context, adminCase adminUseCase.IAdminUseCase) error {
	query, err := http_util.Decode[entity.AdminUserQuery](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	resp, err := adminCase.Dashboard(c.Request().Context(), query)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, resp)
}

func UpdateVerificationHandler(c echo.Context, adminCase adminUseCase.IAdminUseCase) error {
	req, err := http_util.Decode[entity.UpdateVerificationRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	user, err := adminCase.UpdateVerification(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, http_util.HTTPResponse[entity.AdminUser]{
		Message: "Verification status updated",
		Data:    user,
	})
}
