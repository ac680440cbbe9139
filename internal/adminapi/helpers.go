package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/app"
	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// GetAppContext returns the application context attached by the web server.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": data,
	})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     0,
		"msg":      "success",
		"data":     data,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func fail(c echo.Context, status int, code, msg string, details interface{}) error {
	body := map[string]interface{}{
		"code": code,
		"msg":  msg,
	}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}

// failWith maps a domain error onto the HTTP error envelope.
func failWith(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", what+" not found", nil)
	case errors.Is(err, domain.ErrInvalidArgument):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", domain.Message(err), nil)
	case errors.Is(err, domain.ErrDuplicate):
		return fail(c, http.StatusConflict, "DUPLICATE", what+" already exists", domain.Message(err))
	default:
		zap.L().Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process "+what, err.Error())
	}
}

func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := defaultPageSize
	raw := c.QueryParam("pageSize")
	if raw == "" {
		raw = c.QueryParam("perPage")
	}
	if ps, err := strconv.Atoi(raw); err == nil && ps > 0 && ps <= maxPageSize {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
