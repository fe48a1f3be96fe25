package elevconsts

type Direction int

const (
	Down Direction = -1
	None Direction = 0
	Up   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case None:
		return "None"
	default:
		return "Undefined"
	}
}

// Opposite returns the reversed travel direction. None has no opposite and
// is returned unchanged.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	}
	return d
}

type State int

const (
	Idle State = iota
	Moving
	VisitingFloor
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Moving:
		return "Moving"
	case VisitingFloor:
		return "VisitingFloor"
	default:
		return "Undefined"
	}
}
