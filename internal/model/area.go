package model

import "fmt"

// Area is a named location that cleaning jobs are recorded against.
// Name is the primary key; uniqueness is enforced by the synchronization
// layer before insertion, not by the storage tiers.
type Area struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// Validate checks that the area has valid field values.
func (a *Area) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}
