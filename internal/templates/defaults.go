package templates

import "time"

// Template ids form a closed set; anything else is rejected by callers.
const (
	KindBookingAccepted = "booking-accepted"
	KindNoAvailability  = "no-availability"
	KindWaitingList     = "waiting-list"
	KindUpgradePlan     = "upgrade-plan"
)

// Template is a subject/body pair for one notification kind. Placeholders is
// the compiled-in contract for that kind and does not change when a tenant
// overrides the wording. UpdatedAt is set only for tenant overrides.
type Template struct {
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Placeholders []string   `json:"placeholders"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Override is a tenant-saved replacement for a default subject/body.
type Override struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsValidKind reports whether id belongs to the closed template set.
func IsValidKind(id string) bool {
	switch id {
	case KindBookingAccepted, KindNoAvailability, KindWaitingList, KindUpgradePlan:
		return true
	}
	return false
}

// Kinds lists the closed template set.
func Kinds() []string {
	return []string{KindBookingAccepted, KindNoAvailability, KindWaitingList, KindUpgradePlan}
}

var defaults = map[string]Template{
	KindBookingAccepted: {
		ID:      KindBookingAccepted,
		Subject: "Your booking at {{restaurantName}} is confirmed",
		Body: "<p>Hi {{guestName}},</p>" +
			"<p>Your booking at {{restaurantName}} is confirmed for {{bookingDate}} at {{bookingTime}}, party of {{partySize}}.</p>" +
			"{{#if notes}}<p>Special Requests: {{notes}}</p>{{/if}}" +
			"<p>We look forward to seeing you!</p>",
		Placeholders: []string{"guestName", "restaurantName", "bookingDate", "bookingTime", "partySize", "notes"},
	},
	KindNoAvailability: {
		ID:      KindNoAvailability,
		Subject: "No availability at {{restaurantName}}",
		Body: "<p>Hi {{guestName}},</p>" +
			"<p>Unfortunately {{restaurantName}} has no availability on {{bookingDate}} at {{bookingTime}} for a party of {{partySize}}.</p>" +
			"<p>Please try a different date or time.</p>",
		Placeholders: []string{"guestName", "restaurantName", "bookingDate", "bookingTime", "partySize"},
	},
	KindWaitingList: {
		ID:      KindWaitingList,
		Subject: "You're on the waiting list at {{restaurantName}}",
		Body: "<p>Hi {{guestName}},</p>" +
			"<p>We've added you to the waiting list at {{restaurantName}} for {{bookingDate}} at {{bookingTime}}, party of {{partySize}}.</p>" +
			"<p>We'll email you as soon as a table frees up.</p>",
		Placeholders: []string{"guestName", "restaurantName", "bookingDate", "bookingTime", "partySize"},
	},
	KindUpgradePlan: {
		ID:      KindUpgradePlan,
		Subject: "Time to upgrade your plan",
		Body: "<p>Hi {{restaurantName}},</p>" +
			"<p>You've reached the limits of your current plan. Upgrade to keep accepting bookings without interruption.</p>",
		Placeholders: []string{"restaurantName"},
	},
}

// Default returns the compiled-in template for id. The boolean is false for
// an id outside the closed set.
func Default(id string) (Template, bool) {
	t, ok := defaults[id]
	return t, ok
}
