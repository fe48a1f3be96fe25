package elevunit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/szymonmasternak/elevator-bank/internal/elevconfig"
	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevevent"
	"github.com/szymonmasternak/elevator-bank/internal/elevrider"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// ArrivalHandler is notified when a unit services a marked floor. The call is
// synchronous: the unit keeps its door open until the handler returns, and
// the handler may call back into the unit (UnloadRiders, LoadRider).
type ArrivalHandler interface {
	ElevatorArrived(unit *Unit, floor int, direction elevconsts.Direction)
}

// Snapshot is a consistent view of a unit's observable state.
type Snapshot struct {
	State     elevconsts.State
	Direction elevconsts.Direction
	Floor     int
}

// Unit is one elevator car: its state machine, the two direction-specific
// request arrays, the riders currently inside, and the control loop that
// moves it. All fields behind mtx are touched only while holding it; the
// lock is always released before a sleep or poll.
type Unit struct {
	id        string
	numFloors int
	timing    elevconfig.Timing
	handler   ArrivalHandler
	recorder  elevevent.Recorder

	mtx          sync.Mutex
	state        elevconsts.State
	direction    elevconsts.Direction
	floor        int
	upRequests   []bool
	downRequests []bool
	riders       []elevrider.Rider

	// Door overrides are shared signals with no single owner, hence atomics.
	forceOpen  atomic.Bool
	forceClose atomic.Bool

	// Edge-triggered wake: capacity 1, pending wakes collapse into one.
	wake chan struct{}
}

func NewUnit(id string, numFloors int, startFloor int, timing elevconfig.Timing,
	handler ArrivalHandler, recorder elevevent.Recorder) *Unit {

	if numFloors < 2 {
		panic(fmt.Sprintf("elevunit: need at least 2 floors, got %d", numFloors))
	}
	if startFloor < 0 || startFloor >= numFloors {
		panic(fmt.Sprintf("elevunit: start floor %d out of range [0,%d)", startFloor, numFloors))
	}

	return &Unit{
		id:           id,
		numFloors:    numFloors,
		timing:       timing,
		handler:      handler,
		recorder:     recorder,
		state:        elevconsts.Idle,
		direction:    elevconsts.None,
		floor:        startFloor,
		upRequests:   make([]bool, numFloors),
		downRequests: make([]bool, numFloors),
		wake:         make(chan struct{}, 1),
	}
}

func (u *Unit) ID() string {
	return u.id
}

func (u *Unit) NumFloors() int {
	return u.numFloors
}

// GetState returns a snapshot taken under the unit lock, never observing a
// state mid-transition.
func (u *Unit) GetState() Snapshot {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return Snapshot{State: u.state, Direction: u.direction, Floor: u.floor}
}

// RequestFloor marks the floor in the direction-specific request array and
// wakes the control loop. An out-of-range floor or a direction other than
// Up/Down is a programming error.
func (u *Unit) RequestFloor(floor int, direction elevconsts.Direction) {
	u.mustValidFloor(floor)
	if direction != elevconsts.Up && direction != elevconsts.Down {
		panic(fmt.Sprintf("elevunit: invalid request direction %v", direction))
	}

	u.mtx.Lock()
	if direction == elevconsts.Up {
		u.upRequests[floor] = true
	} else {
		u.downRequests[floor] = true
	}
	u.record(elevevent.FloorRequested, floor, direction)
	u.mtx.Unlock()

	u.signalWake()
}

// LoadRider puts a rider inside the car and marks their destination in the
// array matching the travel direction from the current floor.
func (u *Unit) LoadRider(rider elevrider.Rider) {
	u.mustValidFloor(rider.Destination())

	u.mtx.Lock()
	u.riders = append(u.riders, rider)
	switch rider.DirectionFrom(u.floor) {
	case elevconsts.Up:
		u.upRequests[rider.Destination()] = true
	case elevconsts.Down:
		u.downRequests[rider.Destination()] = true
	}
	u.record(elevevent.RiderLoaded, u.floor, u.direction)
	u.mtx.Unlock()

	u.signalWake()
}

// UnloadRiders atomically removes and returns every rider whose destination
// is the current floor.
func (u *Unit) UnloadRiders() []elevrider.Rider {
	u.mtx.Lock()
	defer u.mtx.Unlock()

	var leaving, staying []elevrider.Rider
	for _, rider := range u.riders {
		if rider.Destination() == u.floor {
			leaving = append(leaving, rider)
		} else {
			staying = append(staying, rider)
		}
	}
	u.riders = staying
	for range leaving {
		u.record(elevevent.RiderUnloaded, u.floor, u.direction)
	}
	return leaving
}

// Riders returns a copy of the riders currently inside the car.
func (u *Unit) Riders() []elevrider.Rider {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	riders := make([]elevrider.Rider, len(u.riders))
	copy(riders, u.riders)
	return riders
}

// Marked reports whether the floor is marked in the given direction's array.
func (u *Unit) Marked(floor int, direction elevconsts.Direction) bool {
	u.mustValidFloor(floor)
	u.mtx.Lock()
	defer u.mtx.Unlock()
	if direction == elevconsts.Up {
		return u.upRequests[floor]
	}
	return u.downRequests[floor]
}

// ForceOpenDoor asserts or clears the hold-open override. Takes effect
// during the next door-close phase.
func (u *Unit) ForceOpenDoor(pressed bool) {
	u.forceOpen.Store(pressed)
}

// ForceCloseDoor asserts or clears the cut-dwell-short override. Takes
// effect during the next door-open phase.
func (u *Unit) ForceCloseDoor(pressed bool) {
	u.forceClose.Store(pressed)
}

// Start launches the unit's control loop. Shutdown is cooperative via ctx:
// in-flight door and travel delays are never aborted, the loop just stops
// picking up new work.
func (u *Unit) Start(ctx context.Context, waitGroup *sync.WaitGroup) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		for {
			select {
			case <-ctx.Done():
				Log.Warn().Msgf("Unit %v control loop has been signaled to stop", u.id)
				return
			case <-u.wake:
			}
			u.serveTrip(ctx)
		}
	}()
}

// serveTrip runs one service sweep: pick a direction from the closest marked
// floor, then visit marked floors in that direction, reversing at the marked
// extreme or a terminus, until no marks remain.
func (u *Unit) serveTrip(ctx context.Context) {
	u.mtx.Lock()
	target, ok := u.closestMarkedLocked()
	if !ok {
		u.mtx.Unlock()
		return
	}
	u.state = elevconsts.Moving
	if target >= u.floor {
		u.direction = elevconsts.Up
	} else {
		u.direction = elevconsts.Down
	}
	u.record(elevevent.DirectionSwitched, u.floor, u.direction)
	u.mtx.Unlock()

	for {
		if ctx.Err() != nil {
			return
		}
		u.processCurrentFloor()
		if !u.advance() {
			break
		}
	}

	u.mtx.Lock()
	u.state = elevconsts.Idle
	u.direction = elevconsts.None
	u.record(elevevent.UnitIdle, u.floor, u.direction)
	u.mtx.Unlock()
}

// processCurrentFloor services the current floor if it is marked in the
// active direction: clear the mark, open the door for the dwell period,
// notify the arrival handler, then close the door honoring the overrides.
func (u *Unit) processCurrentFloor() {
	u.mtx.Lock()
	floor := u.floor
	direction := u.direction
	if !u.markedHereLocked(direction) {
		u.mtx.Unlock()
		return
	}
	u.clearMarkLocked(floor, direction)
	u.state = elevconsts.VisitingFloor
	u.record(elevevent.DoorOpened, floor, direction)
	u.mtx.Unlock()

	u.holdDoorOpen()
	if u.handler != nil {
		u.handler.ElevatorArrived(u, floor, direction)
	}
	u.waitOutForceOpen(floor, direction)
	u.record(elevevent.DoorClosed, floor, direction)

	u.mtx.Lock()
	u.state = elevconsts.Moving
	u.mtx.Unlock()
}

// holdDoorOpen keeps the door open for at least the dwell period, polling
// the force-close override which cuts the dwell short.
func (u *Unit) holdDoorOpen() {
	deadline := time.Now().Add(u.timing.DoorOpenDuration)
	for time.Now().Before(deadline) {
		if u.forceClose.Load() {
			return
		}
		time.Sleep(u.timing.DoorPollInterval)
	}
}

// waitOutForceOpen blocks while the force-open override is held, up to the
// configured maximum. Exceeding the maximum raises an alarm record and the
// door closes regardless.
func (u *Unit) waitOutForceOpen(floor int, direction elevconsts.Direction) {
	start := time.Now()
	for u.forceOpen.Load() {
		if time.Since(start) > u.timing.ForceOpenTimeout {
			Log.Warn().Msgf("Unit %v door held open past %v at floor %d, closing anyway",
				u.id, u.timing.ForceOpenTimeout, floor)
			u.record(elevevent.ForceDoorAlarm, floor, direction)
			return
		}
		time.Sleep(u.timing.DoorPollInterval)
	}
}

// advance performs one move step. At a terminus, or past the marked extreme
// in the active direction, the unit reverses in place instead of moving.
// Returns false once no marked floor remains reachable.
func (u *Unit) advance() bool {
	u.mtx.Lock()
	direction := u.direction
	atTerminus := (direction == elevconsts.Up && u.floor == u.numFloors-1) ||
		(direction == elevconsts.Down && u.floor == 0)

	if atTerminus || !u.markedBeyondLocked(direction) {
		if !u.anyMarkedLocked() {
			u.mtx.Unlock()
			return false
		}
		u.direction = direction.Opposite()
		u.record(elevevent.DirectionSwitched, u.floor, u.direction)
		remaining := u.markedAtOrBeyondLocked(u.direction)
		u.mtx.Unlock()
		return remaining
	}
	u.mtx.Unlock()

	time.Sleep(u.timing.TravelDuration)

	u.mtx.Lock()
	if direction == elevconsts.Up {
		u.floor++
	} else {
		u.floor--
	}
	remaining := u.markedAtOrBeyondLocked(u.direction)
	u.mtx.Unlock()
	return remaining
}

func (u *Unit) signalWake() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

func (u *Unit) mustValidFloor(floor int) {
	if floor < 0 || floor >= u.numFloors {
		panic(fmt.Sprintf("elevunit: floor %d out of range [0,%d)", floor, u.numFloors))
	}
}

func (u *Unit) record(kind elevevent.Kind, floor int, direction elevconsts.Direction) {
	if u.recorder == nil {
		return
	}
	u.recorder.Record(elevevent.Record{
		Timestamp: time.Now(),
		UnitID:    u.id,
		Floor:     floor,
		Kind:      kind,
		Direction: direction,
	})
}
