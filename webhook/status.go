package webhook

import "fmt"

/* Status is the result of a delivery attempt as seen in listings and metrics
 * The zero value is used by filters to mean "any".
 */
type Status int

const (
	Succeeded Status = iota + 1
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "any"
	}
}

// ParseStatus creates a Status from a string; the empty string means any
func ParseStatus(str string) (Status, error) {
	switch str {
	case "", "any":
		return 0, nil
	case "succeeded", "success":
		return Succeeded, nil
	case "failed", "failure":
		return Failed, nil
	default:
		return 0, fmt.Errorf("%w: unknown delivery status %q", ErrInvalid, str)
	}
}

// Matches reports whether a delivery with the given success flag passes the filter
func (s Status) Matches(success bool) bool {
	switch s {
	case Succeeded:
		return success
	case Failed:
		return !success
	default:
		return true
	}
}
