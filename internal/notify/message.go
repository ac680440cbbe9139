package notify

import (
	"strings"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

const Subject = "New Booking Alert"

const longDateLayout = "Monday, January 2, 2006"

// RenderBookingMessage formats the operator alert text.
func RenderBookingMessage(s domain.BookingSummary) string {
	var b strings.Builder
	b.WriteString("New Booking Alert!\n\n")
	b.WriteString("Customer: " + s.CustomerName + "\n")
	b.WriteString("Phone: " + s.CustomerPhone + "\n")
	b.WriteString("Email: " + s.CustomerEmail + "\n")
	b.WriteString("Date: " + s.Date.Format(longDateLayout) + "\n")
	b.WriteString("Time: " + s.Time)
	if s.Notes != "" {
		b.WriteString("\nNotes: " + s.Notes)
	}
	b.WriteString("\n\nPlease check your admin dashboard for details.")
	return b.String()
}
