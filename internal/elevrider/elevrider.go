package elevrider

import (
	"fmt"

	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
)

// Rider is an immutable passenger: a name and the floor they want to reach.
type Rider struct {
	name        string
	destination int
}

func NewRider(name string, destination int) Rider {
	return Rider{name: name, destination: destination}
}

func (r Rider) Name() string {
	return r.name
}

func (r Rider) Destination() int {
	return r.destination
}

// DirectionFrom returns the direction the rider travels when boarding at the
// given floor. None means the rider is already where they want to be.
func (r Rider) DirectionFrom(floor int) elevconsts.Direction {
	switch {
	case r.destination > floor:
		return elevconsts.Up
	case r.destination < floor:
		return elevconsts.Down
	}
	return elevconsts.None
}

func (r Rider) String() string {
	return fmt.Sprintf("%s->%d", r.name, r.destination)
}
