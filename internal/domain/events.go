package domain

import "time"

// TopicBookingCreated is published after a booking transaction commits.
const TopicBookingCreated = "booking:created"

// BookingSummary is the payload delivered to operator notification channels
type BookingSummary struct {
	BookingID     int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Date          time.Time
	Time          string
	Notes         string
}
