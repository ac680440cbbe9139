package domain

var Tables = []interface{}{
	// Catalog
	&Product{},
	&StockMovement{},
	// Customers
	&Customer{},
	&Booking{},
	&Order{},
	&OrderItem{},
	// Audit
	&NotificationLog{},
}
