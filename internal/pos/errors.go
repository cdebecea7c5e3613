package pos

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps network/timeout failures reaching the POS.
	ErrUnavailable = errors.New("pos unavailable")

	// ErrOrderNotFound: the POS has no order with the given id.
	ErrOrderNotFound = errors.New("pos order not found")
)

// RemoteError is a business rejection from the POS (the request reached it
// and was refused).
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("pos rejected: status=%d code=%s msg=%s", e.Status, e.Code, e.Message)
}
