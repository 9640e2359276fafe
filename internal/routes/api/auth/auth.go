package routesAPIAuth

import (
	"net/http"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	authUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/auth"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/labstack/echo"
)

func SignUpHandler(c echo.Context, authCase authUseCase.IAuthUseCase) error {
	reqBody, err := http_util.Decode[entity.CreateUserRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	if ok, err := http_util.ValidateRequest(c, &reqBody); !ok {
		return err
	}

	user, err := authCase.SignupUser(c.Request().Context(), reqBody)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, http_util.HTTPResponse[entity.SignUpResponse]{
		Message: "Sign-up successful",
		Data: entity.SignUpResponse{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		},
	})
}

func SignInHandler(c echo.Context, authCase authUseCase.IAuthUseCase) error {
	reqBody, err := http_util.Decode[entity.SignInRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	if ok, err := http_util.ValidateRequest(c, &reqBody); !ok {
		return err
	}

	token, err := authCase.SignIn(c.Request().Context(), reqBody.Email, reqBody.Username, reqBody.Password)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, http_util.HTTPResponse[entity.SignInResponse]{
		Message: "Sign-in successful",
		Data:    entity.SignInResponse{Token: token},
	})
}
