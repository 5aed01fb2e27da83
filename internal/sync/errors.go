package sync

import "fmt"

// UnknownAreaError is returned by RenameArea when the area to rename is not
// present in the in-memory collection.
type UnknownAreaError struct {
	Name string
}

func (e *UnknownAreaError) Error() string {
	return fmt.Sprintf("unknown area %q", e.Name)
}
