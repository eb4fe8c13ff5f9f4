package models

// Notification kinds dispatched by the booking workflow.
const (
	NotifyBookingRequested = "booking_requested"
	NotifyBookingAccepted  = "booking_accepted"
	NotifyBookingRejected  = "booking_rejected"
)

// Notification is a structured message handed to the notification sender.
type Notification struct {
	Type  string            `json:"type"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// NotificationRetryPayload is the asynq task payload for re-delivering a
// notification whose initial send failed.
type NotificationRetryPayload struct {
	Notification Notification `json:"notification"`
	BookingID    string       `json:"bookingId"`
}
