package elevdispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/szymonmasternak/elevator-bank/internal/elevconfig"
	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevevent"
	"github.com/szymonmasternak/elevator-bank/internal/elevfloor"
	"github.com/szymonmasternak/elevator-bank/internal/elevunit"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// Request is one pending hall call: a floor and the direction the caller
// wants to travel.
type Request struct {
	Floor     int
	Direction elevconsts.Direction
}

// Dispatcher owns the bank: the unit registry, the floor registry, and the
// FIFO queue of hall calls. Its control loop routes the head request to the
// best unit, retrying with a fixed backoff while no unit qualifies. The
// queue is strictly FIFO: an unroutable head blocks everything behind it.
type Dispatcher struct {
	timing   elevconfig.Timing
	recorder elevevent.Recorder

	units  []*elevunit.Unit
	floors []*elevfloor.Floor

	queueMtx sync.Mutex
	queue    []Request

	initialised bool
	running     bool

	// Graceful shutdown, last started first stopped.
	waitGroupArray []*sync.WaitGroup
	cancelArray    []context.CancelFunc
}

// NewDispatcher builds the bank: floorCount landings and elevatorCount units,
// every unit starting idle at floor 0 and reporting arrivals back through the
// dispatcher to the matching floor.
func NewDispatcher(floorCount, elevatorCount int, timing elevconfig.Timing,
	recorder elevevent.Recorder) (*Dispatcher, error) {

	if floorCount < 2 {
		return nil, fmt.Errorf("elevdispatch: need at least 2 floors, got %d", floorCount)
	}
	if elevatorCount < 1 {
		return nil, fmt.Errorf("elevdispatch: need at least 1 elevator, got %d", elevatorCount)
	}

	d := &Dispatcher{
		timing:   timing,
		recorder: recorder,
	}

	d.floors = make([]*elevfloor.Floor, floorCount)
	for i := range d.floors {
		d.floors[i] = elevfloor.NewFloor(i)
	}

	d.units = make([]*elevunit.Unit, elevatorCount)
	for i := range d.units {
		d.units[i] = elevunit.NewUnit(unitID(i), floorCount, 0, timing, d, recorder)
	}

	d.initialised = true
	return d, nil
}

func unitID(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return fmt.Sprintf("E%d", index)
}

// ElevatorArrived implements elevunit.ArrivalHandler by forwarding the
// arrival to the floor collaborator. Runs on the unit's control loop; the
// unit's door stays open until the floor exchange returns.
func (d *Dispatcher) ElevatorArrived(unit *elevunit.Unit, floor int, direction elevconsts.Direction) {
	d.floors[floor].ElevatorArrived(unit, direction)
}

func (d *Dispatcher) NumFloors() int {
	return len(d.floors)
}

func (d *Dispatcher) NumUnits() int {
	return len(d.units)
}

func (d *Dispatcher) FloorAt(index int) *elevfloor.Floor {
	return d.floors[index]
}

func (d *Dispatcher) UnitAt(index int) *elevunit.Unit {
	return d.units[index]
}

// RequestElevator enqueues a hall call. Malformed input is a boundary error:
// logged, reported, nothing enqueued.
func (d *Dispatcher) RequestElevator(floor int, direction elevconsts.Direction) error {
	if floor < 0 || floor >= len(d.floors) {
		Log.Error().Msgf("Rejecting request for floor %d, valid range [0,%d)", floor, len(d.floors))
		return fmt.Errorf("elevdispatch: floor %d out of range [0,%d)", floor, len(d.floors))
	}
	if direction != elevconsts.Up && direction != elevconsts.Down {
		Log.Error().Msgf("Rejecting request with direction %v", direction)
		return fmt.Errorf("elevdispatch: request direction must be Up or Down, got %v", direction)
	}

	d.queueMtx.Lock()
	d.queue = append(d.queue, Request{Floor: floor, Direction: direction})
	d.queueMtx.Unlock()
	return nil
}

// QueuedRequests returns how many hall calls are still waiting to be routed.
func (d *Dispatcher) QueuedRequests() int {
	d.queueMtx.Lock()
	defer d.queueMtx.Unlock()
	return len(d.queue)
}

// Start launches one control loop per unit plus the dispatcher's own loop.
func (d *Dispatcher) Start() {
	if !d.initialised {
		Log.Error().Msg("Dispatcher not initialised")
		return
	}
	if d.running {
		Log.Error().Msg("Dispatcher already running")
		return
	}

	for _, unit := range d.units {
		ctx, cancel := context.WithCancel(context.Background())
		waitGroup := &sync.WaitGroup{}
		unit.Start(ctx, waitGroup)
		d.waitGroupArray = append(d.waitGroupArray, waitGroup)
		d.cancelArray = append(d.cancelArray, cancel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	waitGroup := &sync.WaitGroup{}
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		d.routeLoop(ctx)
	}()
	d.waitGroupArray = append(d.waitGroupArray, waitGroup)
	d.cancelArray = append(d.cancelArray, cancel)

	d.running = true
}

// Stop signals every loop to terminate and waits for them. Cooperative:
// in-flight door and travel delays run to completion.
func (d *Dispatcher) Stop() {
	if !d.running {
		Log.Error().Msg("Dispatcher not running, so cannot stop it")
		return
	}

	Log.Debug().Msg("Stopping dispatcher")
	for i := len(d.cancelArray) - 1; i >= 0; i-- {
		d.cancelArray[i]()
		d.waitGroupArray[i].Wait()
	}
	d.cancelArray = nil
	d.waitGroupArray = nil
	d.running = false
	Log.Debug().Msg("Stopped dispatcher")
}

// routeLoop repeatedly tries to route the head of the queue. The queue lock
// is never held across the routing computation; each unit snapshot is taken
// under that unit's own lock, so the decision is advisory and simply retried
// after the backoff when it fails.
func (d *Dispatcher) routeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			Log.Warn().Msg("Dispatcher route loop has been signaled to stop")
			return
		default:
		}

		request, ok := d.peekHead()
		if !ok {
			time.Sleep(d.timing.DispatchRetryInterval)
			continue
		}

		index := FindBestElevator(d.snapshots(), request.Floor, request.Direction)
		if index < 0 {
			Log.Debug().Msgf("No unit can take request (%d, %v) yet, retrying", request.Floor, request.Direction)
			time.Sleep(d.timing.DispatchRetryInterval)
			continue
		}

		// Forward before dequeueing so an observer polling the queue never
		// sees it empty while the call is not yet marked on a unit.
		Log.Info().Msgf("Routing request (%d, %v) to unit %v", request.Floor, request.Direction, d.units[index].ID())
		d.units[index].RequestFloor(request.Floor, request.Direction)
		d.dequeueHead()
	}
}

func (d *Dispatcher) peekHead() (Request, bool) {
	d.queueMtx.Lock()
	defer d.queueMtx.Unlock()
	if len(d.queue) == 0 {
		return Request{}, false
	}
	return d.queue[0], true
}

func (d *Dispatcher) dequeueHead() {
	d.queueMtx.Lock()
	defer d.queueMtx.Unlock()
	if len(d.queue) > 0 {
		d.queue = d.queue[1:]
	}
}

func (d *Dispatcher) snapshots() []elevunit.Snapshot {
	snapshots := make([]elevunit.Snapshot, len(d.units))
	for i, unit := range d.units {
		snapshots[i] = unit.GetState()
	}
	return snapshots
}

// FindBestElevator picks the unit index to service a hall call, or -1 when
// none qualifies. Candidates are idle units and units already traveling in
// the requested direction on the correct side of the floor; minimum absolute
// distance wins, strict comparison, so the first-scanned index keeps exact
// ties. Pure function of the snapshots: same input, same answer.
func FindBestElevator(snapshots []elevunit.Snapshot, floor int, direction elevconsts.Direction) int {
	best := -1
	bestDistance := int(^uint(0) >> 1)

	for i, snapshot := range snapshots {
		candidate := false
		switch {
		case snapshot.State == elevconsts.Idle:
			candidate = true
		case snapshot.Direction == direction && direction == elevconsts.Up && snapshot.Floor <= floor:
			candidate = true
		case snapshot.Direction == direction && direction == elevconsts.Down && snapshot.Floor >= floor:
			candidate = true
		}
		if !candidate {
			continue
		}

		distance := snapshot.Floor - floor
		if distance < 0 {
			distance = -distance
		}
		if distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	return best
}
