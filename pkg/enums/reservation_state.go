package enums

import "fmt"

// ReservationState tracks how an inventory hold was resolved.
type ReservationState string

const (
	ReservationStateHeld      ReservationState = "held"
	ReservationStateCommitted ReservationState = "committed"
	ReservationStateReleased  ReservationState = "released"
)

var validReservationStates = []ReservationState{
	ReservationStateHeld,
	ReservationStateCommitted,
	ReservationStateReleased,
}

// String implements fmt.Stringer.
func (r ReservationState) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReservationState.
func (r ReservationState) IsValid() bool {
	for _, candidate := range validReservationStates {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReservationState converts raw input into a ReservationState.
func ParseReservationState(value string) (ReservationState, error) {
	for _, candidate := range validReservationStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation state %q", value)
}
