package warranty

import "time"

// Status is the derived lifecycle classification of a warranty record.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring-soon"
	StatusExpired      Status = "expired"
)

// DefaultHorizonDays is the number of days before expiry at which a
// warranty transitions from active to expiring-soon.
const DefaultHorizonDays = 30

// DeriveStatus classifies a warranty from its end date and the supplied
// reference time. The comparison is strict: a warranty whose end date
// equals now is already expired. The horizon boundary is inclusive.
// The caller always passes now explicitly; this function never reads a
// system clock.
func DeriveStatus(warrantyEnd, now time.Time, horizonDays int) Status {
	if warrantyEnd.Before(now) || warrantyEnd.Equal(now) {
		return StatusExpired
	}
	horizon := now.AddDate(0, 0, horizonDays)
	if !warrantyEnd.After(horizon) {
		return StatusExpiringSoon
	}
	return StatusActive
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpiringSoon, StatusExpired:
		return true
	}
	return false
}
