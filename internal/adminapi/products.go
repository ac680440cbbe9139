package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/tuxedoshop/internal/catalog"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

// registerProductRoutes registers catalog browsing and product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/barcode", getProductByBarcode)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.AdminPOST("/products", createProduct)
	webserver.AdminPUT("/products/:id", updateProduct)
	webserver.AdminDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	q := catalog.ListQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Q:        strings.TrimSpace(c.QueryParam("q")),
	}
	// the storefront lists the whole catalog unless a page is asked for
	if c.QueryParam("page") != "" || c.QueryParam("pageSize") != "" || c.QueryParam("perPage") != "" {
		q.Page, q.PageSize = parsePagination(c)
	}

	rows, total, err := GetAppContext(c).Catalog().List(c.Request().Context(), q)
	if err != nil {
		return failWith(c, err, "products")
	}
	page, pageSize := q.Page, q.PageSize
	if page == 0 {
		page, pageSize = 1, len(rows)
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).Catalog().Get(c.Request().Context(), id)
	if err != nil {
		return failWith(c, err, "Product")
	}
	return ok(c, p)
}

func getProductByBarcode(c echo.Context) error {
	barcode := strings.TrimSpace(c.QueryParam("barcode"))
	if barcode == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Barcode parameter is required", nil)
	}
	p, err := GetAppContext(c).Catalog().GetByBarcode(c.Request().Context(), barcode)
	if err != nil {
		return failWith(c, err, "Product")
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := GetAppContext(c).Catalog().Create(c.Request().Context(), payload)
	if err != nil {
		return failWith(c, err, "Product")
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := GetAppContext(c).Catalog().Update(c.Request().Context(), id, payload)
	if err != nil {
		return failWith(c, err, "Product")
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetAppContext(c).Catalog().Delete(c.Request().Context(), id); err != nil {
		return failWith(c, err, "Product")
	}
	return ok(c, map[string]interface{}{"id": strconv.FormatInt(id, 10)})
}
