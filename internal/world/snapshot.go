package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Snapshot is the stored form of the world clock and weather.
type Snapshot struct {
	Name    string  `json:"name"`
	Hour    int     `json:"hour"`
	Minute  int     `json:"minute"`
	Day     int     `json:"day"`
	Weather Weather `json:"weather"`
}

func (s *Snapshot) Validate() error {
	el := errors.NewErrorList()

	if s.Hour < 0 || s.Hour > 23 {
		el.Add(fmt.Errorf("hour must be between 0 and 23"))
	}
	if s.Minute < 0 || s.Minute > 59 {
		el.Add(fmt.Errorf("minute must be between 0 and 59"))
	}
	if s.Day < 1 {
		el.Add(fmt.Errorf("day must be at least 1"))
	}
	if !s.Weather.valid() {
		el.Add(fmt.Errorf("unknown weather %q", s.Weather))
	}

	return el.Err()
}
