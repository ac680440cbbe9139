package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/tuxedoshop/internal/booking"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

// registerBookingRoutes registers fitting appointment routes
func registerBookingRoutes() {
	webserver.ApiPOST("/bookings", createBooking)
	webserver.AdminGET("/bookings", listBookings)
	webserver.AdminPUT("/bookings/:id", updateBooking)
	webserver.AdminDELETE("/bookings/:id", deleteBooking)
}

func createBooking(c echo.Context) error {
	var payload booking.CreateInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse booking request", err.Error())
	}
	b, err := GetAppContext(c).Bookings().Create(c.Request().Context(), payload)
	if err != nil {
		return failWith(c, err, "booking")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": b,
	})
}

func listBookings(c echo.Context) error {
	rows, err := GetAppContext(c).Bookings().List(c.Request().Context())
	if err != nil {
		return failWith(c, err, "bookings")
	}
	return ok(c, rows)
}

func updateBooking(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID", nil)
	}
	var payload booking.UpdateInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse booking update", err.Error())
	}
	b, err := GetAppContext(c).Bookings().Update(c.Request().Context(), id, payload)
	if err != nil {
		return failWith(c, err, "Booking")
	}
	return ok(c, b)
}

func deleteBooking(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID", nil)
	}
	if err := GetAppContext(c).Bookings().Delete(c.Request().Context(), id); err != nil {
		return failWith(c, err, "Booking")
	}
	return ok(c, map[string]interface{}{"message": "Booking deleted successfully"})
}
