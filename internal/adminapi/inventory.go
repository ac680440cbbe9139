package adminapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/tuxedoshop/internal/catalog"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

type scanOutPayload struct {
	Barcode  string      `json:"barcode"`
	Quantity json.Number `json:"quantity"`
}

// registerInventoryRoutes registers stock handling endpoints
func registerInventoryRoutes() {
	webserver.AdminGET("/products/summary", inventorySummary)
	webserver.AdminPOST("/products/scan-out", scanOut)
	webserver.AdminPOST("/products/bulk-import", bulkImport)
	webserver.AdminGET("/products/:id/movements", listMovements)
}

func scanOut(c echo.Context) error {
	var payload scanOutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse scan-out request", err.Error())
	}
	barcode := strings.TrimSpace(payload.Barcode)
	if barcode == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Barcode is required", nil)
	}
	qty, err := catalog.ParseQuantity(payload.Quantity.String())
	if err != nil {
		return failWith(c, err, "Product")
	}

	change, err := GetAppContext(c).Catalog().ScanOut(c.Request().Context(), barcode, qty)
	if err != nil {
		return failWith(c, err, "Product with this barcode")
	}
	return ok(c, map[string]interface{}{
		"message": fmt.Sprintf("%d item(s) scanned out successfully", qty),
		"product": change,
	})
}

func bulkImport(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No file provided", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read uploaded file", err.Error())
	}
	defer f.Close()

	res, err := GetAppContext(c).Catalog().Import(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return failWith(c, err, "import")
	}
	zap.L().Info("bulk import requested",
		zap.String("file", fh.Filename),
		zap.Int64("size", fh.Size))
	return ok(c, map[string]interface{}{
		"message": fmt.Sprintf("Import completed: %d successful, %d failed", res.Success, res.Failed),
		"results": res,
	})
}

func listMovements(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	rows, err := GetAppContext(c).Catalog().Movements(c.Request().Context(), id)
	if err != nil {
		return failWith(c, err, "stock movements")
	}
	return ok(c, rows)
}

func inventorySummary(c echo.Context) error {
	s, err := GetAppContext(c).Catalog().Summary(c.Request().Context())
	if err != nil {
		return failWith(c, err, "inventory summary")
	}
	return ok(c, s)
}
