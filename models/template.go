package models

import "time"

// MenuTemplate is a catalog item describing a reusable chef-event offering.
// Bookings are priced from the template's unit price at creation time; later
// template edits never touch existing bookings.
type MenuTemplate struct {
	ID          string    `bson:"id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	UnitPrice   int64     `bson:"unit_price" json:"unitPrice"` // Per-person price in minor currency units
	Courses     []string  `bson:"courses,omitempty" json:"courses,omitempty"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
