package models

import "time"

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// CustomerInfo holds the contact details captured with a booking request.
type CustomerInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// Booking represents a private-chef event booking request.
type Booking struct {
	ID                string        `bson:"id" json:"id"`                                    // Unique booking identifier (UUID)
	Status            BookingStatus `bson:"status" json:"status"`                            // pending | confirmed | cancelled | completed
	TemplateProductID string        `bson:"template_product_id" json:"templateProductId"`    // Menu template the booking was priced from
	RequestedDate     string        `bson:"requested_date" json:"requestedDate"`             // Event date in "YYYY-MM-DD" format
	RequestedTime     string        `bson:"requested_time" json:"requestedTime"`             // Event start time in "HH:MM" format
	PartySize         int           `bson:"party_size" json:"partySize"`                     // Number of guests
	EventType         string        `bson:"event_type,omitempty" json:"eventType,omitempty"` // e.g. "dinner party", "anniversary"
	LocationType      string        `bson:"location_type,omitempty" json:"locationType,omitempty"`
	LocationAddress   string        `bson:"location_address,omitempty" json:"locationAddress,omitempty"`
	Customer          CustomerInfo  `bson:"customer" json:"customer"`
	PricePerPerson    int64         `bson:"price_per_person" json:"pricePerPerson"` // Minor currency units, fixed at creation
	TotalPrice        int64         `bson:"total_price" json:"totalPrice"`          // price_per_person * party_size at creation
	DepositPaid       bool          `bson:"deposit_paid" json:"depositPaid"`
	AssignedChefID    string        `bson:"assigned_chef_id,omitempty" json:"assignedChefId,omitempty"`
	AcceptedAt        *time.Time    `bson:"accepted_at,omitempty" json:"acceptedAt,omitempty"`
	AcceptedBy        string        `bson:"accepted_by,omitempty" json:"acceptedBy,omitempty"`
	RejectionReason   string        `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	ChefNotes         string        `bson:"chef_notes,omitempty" json:"chefNotes,omitempty"`
	CreatedAt         time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Slot identifies when an event occurs. Conflict detection matches slots
// exactly (date and time equality), not by interval overlap.
type Slot struct {
	Date string `bson:"date" json:"date"`
	Time string `bson:"time" json:"time"`
}

// Slot returns the booking's requested slot.
func (b *Booking) Slot() Slot {
	return Slot{Date: b.RequestedDate, Time: b.RequestedTime}
}
