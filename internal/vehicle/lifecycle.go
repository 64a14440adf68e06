package vehicle

import "fmt"

// Status is a vehicle's lifecycle state, persisted as a string.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPurchased Status = "purchased"
	StatusEnroute   Status = "enroute"
	StatusWarehouse Status = "warehouse"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var statuses = map[Status]struct{}{
	StatusDraft:     {},
	StatusPurchased: {},
	StatusEnroute:   {},
	StatusWarehouse: {},
	StatusShipped:   {},
	StatusDelivered: {},
	StatusCancelled: {},
}

// TransitionError reports a status value outside the known enumeration.
type TransitionError struct {
	Status Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("vehicle: unknown status %q", e.Status)
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statuses[st]; !ok {
		return "", &TransitionError{Status: st}
	}
	return st, nil
}

// Transition moves a vehicle between lifecycle states. The workflow is
// deliberately permissive: any known state may move to any other known
// state, including itself. Ordering is not enforced; this function exists
// so a future tightening is a one-place change.
func Transition(current, target Status) (Status, error) {
	if _, ok := statuses[current]; !ok {
		return "", &TransitionError{Status: current}
	}
	if _, ok := statuses[target]; !ok {
		return "", &TransitionError{Status: target}
	}
	return target, nil
}
