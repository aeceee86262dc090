// Package dispatch performs the outbound email transport call.
package dispatch

import "context"

// OutboundEmail is the transient per-call message. SenderName/SenderEmail are
// already resolved by the caller; OwnerKey is carried for logging only.
type OutboundEmail struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
	SenderName  string `json:"senderName,omitempty"`
	SenderEmail string `json:"senderEmail,omitempty"`
	OwnerKey    string `json:"ownerKey,omitempty"`
}

// Result is the uniform outcome of a dispatch. Exactly one of MessageID and
// Error is meaningful, gated by Success.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Dispatcher sends one email per invocation. No retries, no deduplication:
// calling twice sends twice. Failures are reported in the Result, never as a
// panic or a raw error crossing the boundary.
type Dispatcher interface {
	Send(ctx context.Context, email OutboundEmail) Result
	Provider() string
}
