package sport

import "fmt"

// Sport is one entry of the booking platform's sport catalog. Immutable once
// fetched; identity is the numeric id.
type Sport struct {
	ID      int64
	Name    string
	IconKey string
	Active  bool
}

func (s Sport) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("sport id must be greater than zero")
	}
	if s.Name == "" {
		return fmt.Errorf("sport name is required")
	}

	return nil
}
