package elevunit

import "github.com/szymonmasternak/elevator-bank/internal/elevconsts"

// Scan helpers over the two request arrays. A floor counts as marked when it
// is set in either array: a mark in the opposite array still bounds the
// sweep, it just gets serviced after the reversal. Callers hold u.mtx.

func (u *Unit) markedHereLocked(direction elevconsts.Direction) bool {
	if direction == elevconsts.Up {
		return u.upRequests[u.floor]
	}
	if direction == elevconsts.Down {
		return u.downRequests[u.floor]
	}
	return false
}

func (u *Unit) clearMarkLocked(floor int, direction elevconsts.Direction) {
	if direction == elevconsts.Up {
		u.upRequests[floor] = false
	} else {
		u.downRequests[floor] = false
	}
}

func (u *Unit) markedBeyondLocked(direction elevconsts.Direction) bool {
	switch direction {
	case elevconsts.Up:
		for f := u.floor + 1; f < u.numFloors; f++ {
			if u.upRequests[f] || u.downRequests[f] {
				return true
			}
		}
	case elevconsts.Down:
		for f := 0; f < u.floor; f++ {
			if u.upRequests[f] || u.downRequests[f] {
				return true
			}
		}
	}
	return false
}

func (u *Unit) markedAtOrBeyondLocked(direction elevconsts.Direction) bool {
	if u.upRequests[u.floor] || u.downRequests[u.floor] {
		return true
	}
	return u.markedBeyondLocked(direction)
}

func (u *Unit) anyMarkedLocked() bool {
	for f := 0; f < u.numFloors; f++ {
		if u.upRequests[f] || u.downRequests[f] {
			return true
		}
	}
	return false
}

// closestMarkedLocked returns the marked floor nearest to the current
// position, scanning floors in ascending order so exact-distance ties go to
// the lower floor.
func (u *Unit) closestMarkedLocked() (int, bool) {
	best := -1
	bestDistance := u.numFloors
	for f := 0; f < u.numFloors; f++ {
		if !u.upRequests[f] && !u.downRequests[f] {
			continue
		}
		distance := f - u.floor
		if distance < 0 {
			distance = -distance
		}
		if distance < bestDistance {
			best = f
			bestDistance = distance
		}
	}
	return best, best >= 0
}
