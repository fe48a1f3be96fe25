package elevfloor

import (
	"sync"

	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevrider"
	"github.com/szymonmasternak/elevator-bank/internal/elevunit"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// Floor holds the riders waiting at one landing. The exchange with an
// arriving unit runs under the floor's own lock; the lock ordering is always
// floor before unit.
type Floor struct {
	number int

	mtx     sync.Mutex
	waiting []elevrider.Rider
}

func NewFloor(number int) *Floor {
	return &Floor{number: number}
}

func (f *Floor) Number() int {
	return f.number
}

// AddRider queues a rider at this landing until a unit traveling their way
// arrives.
func (f *Floor) AddRider(rider elevrider.Rider) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.waiting = append(f.waiting, rider)
	Log.Info().Msgf("Rider %v now waiting at floor %d", rider, f.number)
}

func (f *Floor) WaitingCount() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.waiting)
}

// ElevatorArrived performs the synchronous door exchange: release every
// rider whose destination is this floor, then board every waiting rider
// traveling in the unit's direction. Riders headed the other way stay put.
// The unit keeps its door open until this returns.
func (f *Floor) ElevatorArrived(unit *elevunit.Unit, direction elevconsts.Direction) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	for _, rider := range unit.UnloadRiders() {
		Log.Info().Msgf("Rider %v left unit %v at floor %d", rider, unit.ID(), f.number)
	}

	var staying []elevrider.Rider
	for _, rider := range f.waiting {
		if rider.DirectionFrom(f.number) == direction {
			unit.LoadRider(rider)
			Log.Info().Msgf("Rider %v boarded unit %v at floor %d", rider, unit.ID(), f.number)
		} else {
			staying = append(staying, rider)
		}
	}
	f.waiting = staying
}
