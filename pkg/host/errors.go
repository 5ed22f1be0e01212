package host

import "fmt"

// PanicError is returned for a burst whose callback panicked. Writes the
// callback made before panicking stay queued for the next burst.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("host: burst panicked: %v", e.Value)
}
