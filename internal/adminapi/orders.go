package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/tuxedoshop/internal/order"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

// registerOrderRoutes registers checkout and order administration routes
func registerOrderRoutes() {
	webserver.ApiPOST("/orders", createOrder)
	webserver.AdminGET("/orders", listOrders)
}

func createOrder(c echo.Context) error {
	var payload order.CreateInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order request", err.Error())
	}
	o, err := GetAppContext(c).Orders().Create(c.Request().Context(), payload)
	if err != nil {
		return failWith(c, err, "order")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": o,
	})
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := GetAppContext(c).Orders().List(c.Request().Context(), page, pageSize)
	if err != nil {
		return failWith(c, err, "orders")
	}
	return paged(c, rows, total, page, pageSize)
}
