package routesAPIMatch

import (
	"net/http"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/middleware"
	"github.com/ghaniswara/dharmasaathi/internal/usecase/match"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/labstack/echo"
)

func SwipeHandler(c echo.Context, matchCase match.IMatchUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	req, err := http_util.Decode[entity.SwipeRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	resp, err := matchCase.Swipe(c.Request().Context(), user, req)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, resp)
}

func SwipeStatsHandler(c echo.Context, matchCase match.IMatchUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	stats, err := matchCase.SwipeStats(c.Request().Context(), user)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, stats)
}

func DiscoverHandler(c echo.Context, matchCase match.IMatchUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	req, err := http_util.Decode[entity.DiscoverRequest](c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	profiles, err := matchCase.GetDatingProfiles(c.Request().Context(), user, req.Limit)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, entity.DiscoverResponse{Profiles: profiles})
}

func MatchesHandler(c echo.Context, matchCase match.IMatchUseCase) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return http_util.Fail(c, err)
	}

	matches, err := matchCase.GetMatches(c.Request().Context(), user)
	if err != nil {
		return http_util.Fail(c, err)
	}

	return http_util.Encode(c, http.StatusOK, entity.MatchListResponse{Matches: matches})
}
