package queries

import (
	"fmt"
	"strings"
)

// LoadError is returned when a query source cannot be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load queries from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// UnknownQueryError is returned by Registry.Run for names that are not registered.
type UnknownQueryError struct {
	Name      string
	Available []string
}

func (e *UnknownQueryError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown query %q (registry is empty)", e.Name)
	}
	return fmt.Sprintf("unknown query %q\nAvailable queries: %s", e.Name, strings.Join(e.Available, ", "))
}
