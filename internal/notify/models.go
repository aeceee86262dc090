package notify

// BookingDetails carries the event fields shared by the guest-facing
// notification kinds. BookingDate is an ISO date (2006-01-02); it is
// reformatted for display at render time.
type BookingDetails struct {
	GuestName   string `json:"guestName"`
	BookingDate string `json:"bookingDate"`
	BookingTime string `json:"bookingTime"`
	PartySize   int    `json:"partySize"`
}

// BookingConfirmationRequest confirms an accepted booking. Notes, when
// present, surface as a Special Requests line in the body.
type BookingConfirmationRequest struct {
	Recipient string `json:"recipient"`
	OwnerKey  string `json:"ownerKey"`
	BookingDetails
	Notes string `json:"notes"`
}

// NoAvailabilityRequest tells a guest the requested slot could not be booked.
type NoAvailabilityRequest struct {
	Recipient string `json:"recipient"`
	OwnerKey  string `json:"ownerKey"`
	BookingDetails
}

// WaitingListRequest tells a guest they were placed on the waiting list.
type WaitingListRequest struct {
	Recipient string `json:"recipient"`
	OwnerKey  string `json:"ownerKey"`
	BookingDetails
}

// UpgradePlanRequest nudges a restaurant owner toward a larger plan. OwnerKey
// may be empty; the orchestration then falls back to the authenticated actor.
type UpgradePlanRequest struct {
	Recipient string `json:"recipient"`
	OwnerKey  string `json:"ownerKey"`
}

// Response is the uniform caller-facing outcome. The orchestration layer
// never returns an error; every failure mode collapses into Success=false
// with a descriptive Message.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
