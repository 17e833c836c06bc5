package delay

import (
	"fmt"
	"time"
)

// T is the number of seconds counted down before each shot.
type T int

const Default T = 3

var Options = []T{3, 5, 10}

func (d T) String() string {
	return fmt.Sprintf("%vs delay", int(d))
}

func (d T) Seconds() int { return int(d) }

func (d T) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d T) Valid() bool {
	for _, opt := range Options {
		if d == opt {
			return true
		}
	}
	return false
}

// Next cycles through Options. Unknown values restart at the first option.
func (d T) Next() T {
	for i, opt := range Options {
		if d == opt {
			return Options[(i+1)%len(Options)]
		}
	}
	return Options[0]
}

func Parse(seconds int) (T, error) {
	d := T(seconds)
	if !d.Valid() {
		return Default, fmt.Errorf("invalid delay %vs, must be one of %v", seconds, Options)
	}
	return d, nil
}
