// Package adminapi implements the storefront and admin JSON endpoints.
package adminapi

// Init registers every route on the current web server.
func Init() {
	registerAuthRoutes()
	registerProductRoutes()
	registerInventoryRoutes()
	registerBookingRoutes()
	registerOrderRoutes()
}
