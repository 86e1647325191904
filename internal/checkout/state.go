package checkout

import (
	"fmt"
)

// State is a checkout stage.
type State int

const (
	// Empty is a fresh draft with no buyer data.
	Empty State = iota
	// DeliveryCaptured holds payment method and address.
	DeliveryCaptured
	// ContactCaptured additionally holds email, phone and the cart snapshot.
	ContactCaptured
	// Submitted means the order request is in flight.
	Submitted
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case DeliveryCaptured:
		return "delivery_captured"
	case ContactCaptured:
		return "contact_captured"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Trigger names a checkout step that moves the draft between states.
type Trigger string

const (
	TriggerDelivery  Trigger = "delivery"
	TriggerContact   Trigger = "contact"
	TriggerSubmit    Trigger = "submit"
	TriggerConfirmed Trigger = "confirmed"
	TriggerFailed    Trigger = "failed"
	TriggerReset     Trigger = "reset"
)

// transitions enumerates every legal move of the checkout state machine.
var transitions = map[Trigger]map[State]State{
	TriggerDelivery: {
		Empty:            DeliveryCaptured,
		DeliveryCaptured: DeliveryCaptured,
	},
	TriggerContact: {
		DeliveryCaptured: ContactCaptured,
		ContactCaptured:  ContactCaptured,
	},
	TriggerSubmit: {
		ContactCaptured: Submitted,
	},
	TriggerConfirmed: {
		Submitted: Empty,
	},
	TriggerFailed: {
		Submitted: ContactCaptured,
	},
	TriggerReset: {
		Empty:            Empty,
		DeliveryCaptured: Empty,
		ContactCaptured:  Empty,
	},
}

// TransitionError is returned for a checkout step that is not legal in the
// current state, e.g. a contact form arriving before the delivery form.
type TransitionError struct {
	From    State
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("checkout: %s not allowed in state %s", e.Trigger, e.From)
}

// next returns the state reached from s by t.
func next(s State, t Trigger) (State, error) {
	to, ok := transitions[t][s]
	if !ok {
		return s, &TransitionError{From: s, Trigger: t}
	}
	return to, nil
}
