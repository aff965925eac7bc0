package message

import "errors"

// Status represents the delivery lifecycle state of a message.
type Status string

const (
	// Inbound states
	StatusReceived  Status = "received"  // Stored from a webhook, awaiting processing
	StatusProcessed Status = "processed" // Reply generated successfully
	StatusResolved  Status = "resolved"  // Conversation closed by an operator

	// Outbound states
	StatusQueued    Status = "queued"    // Waiting for a dispatcher run
	StatusSending   Status = "sending"   // Claimed by a dispatcher run
	StatusSent      Status = "sent"      // Accepted by the platform
	StatusDelivered Status = "delivered" // Platform confirmed delivery
	StatusRead      Status = "read"      // Platform confirmed read receipt

	// Terminal failure for either direction
	StatusFailed Status = "failed"
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidTransitions defines allowed status transitions. failed has no
// automatic exits; Requeue is the only deliberate way out and is modelled
// here as failed -> queued so the repository guard can enforce it.
var ValidTransitions = map[Status][]Status{
	StatusReceived:  {StatusProcessed, StatusFailed, StatusResolved},
	StatusQueued:    {StatusSending, StatusFailed},
	StatusSending:   {StatusSent, StatusFailed, StatusQueued},
	StatusSent:      {StatusDelivered, StatusRead},
	StatusDelivered: {StatusRead},
	StatusFailed:    {StatusQueued},
	StatusProcessed: {StatusResolved},
	StatusRead:      {},
	StatusResolved:  {},
}

// IsTerminal returns true if the status accepts no pipeline-driven transitions.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusSent || s == StatusProcessed ||
		s == StatusResolved || s == StatusDelivered || s == StatusRead
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
