package models

// BookingInput is the payload for a new booking request.
type BookingInput struct {
	TemplateProductID string       `json:"templateProductId"`
	RequestedDate     string       `json:"requestedDate"` // "YYYY-MM-DD"
	RequestedTime     string       `json:"requestedTime"` // "HH:MM"
	PartySize         int          `json:"partySize"`
	EventType         string       `json:"eventType,omitempty"`
	LocationType      string       `json:"locationType,omitempty"`
	LocationAddress   string       `json:"locationAddress,omitempty"`
	Customer          CustomerInfo `json:"customer"`
	AssignedChefID    string       `json:"assignedChefId,omitempty"`
}
