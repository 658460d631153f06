package order

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusDelivered Status = "DELIVERED"
)

func (s Status) String() string {
	return string(s)
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusPaid: true,
	},
	StatusPaid: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
}

// Status derives the lifecycle state from the paid and delivered flags.
func (o *Order) Status() Status {
	switch {
	case o.IsDelivered:
		return StatusDelivered
	case o.IsPaid:
		return StatusPaid
	default:
		return StatusPending
	}
}

func checkTransition(current, next Status) error {
	if allowedTransitions[current][next] {
		return nil
	}

	switch {
	case next == StatusPaid:
		return ErrAlreadyPaid
	case next == StatusDelivered && current == StatusPending:
		return ErrOrderNotPaid
	case next == StatusDelivered:
		return ErrAlreadyDelivered
	default:
		return ErrInvalidStatusTransition
	}
}

// Actions lists what the viewer may do with an order right now.
type Actions struct {
	CanPay           bool `json:"canPay"`
	CanMarkDelivered bool `json:"canMarkDelivered"`
}

// ActionsFor reports the order actions available to viewer. Paying depends
// only on the order; marking delivered is reserved to admins.
func ActionsFor(o *Order, viewer Viewer) Actions {
	return Actions{
		CanPay:           checkTransition(o.Status(), StatusPaid) == nil,
		CanMarkDelivered: viewer.IsAdmin && checkTransition(o.Status(), StatusDelivered) == nil,
	}
}
