package elevunit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/szymonmasternak/elevator-bank/internal/elevconfig"
	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevevent"
	"github.com/szymonmasternak/elevator-bank/internal/elevrider"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

const TEST_TIMEOUT = 5 * time.Second

func testTiming() elevconfig.Timing {
	return elevconfig.Timing{
		DoorOpenDuration:      5 * time.Millisecond,
		TravelDuration:        2 * time.Millisecond,
		DoorPollInterval:      time.Millisecond,
		ForceOpenTimeout:      30 * time.Millisecond,
		DispatchRetryInterval: 5 * time.Millisecond,
	}
}

// waitForSnapshot polls GetState until the predicate holds or the timeout
// expires.
func waitForSnapshot(t *testing.T, unit *Unit, what string, predicate func(Snapshot) bool) {
	t.Helper()
	deadline := time.Now().Add(TEST_TIMEOUT)
	for time.Now().Before(deadline) {
		if predicate(unit.GetState()) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %v, last snapshot %+v", what, unit.GetState())
}

func idleAt(floor int) func(Snapshot) bool {
	return func(s Snapshot) bool {
		return s.State == elevconsts.Idle && s.Floor == floor
	}
}

func startUnit(t *testing.T, unit *Unit) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	waitGroup := &sync.WaitGroup{}
	unit.Start(ctx, waitGroup)
	t.Cleanup(func() {
		cancel()
		waitGroup.Wait()
	})
}

// Single request three floors up: Idle -> Moving -> VisitingFloor -> Idle,
// final position at the requested floor with direction cleared.
func TestServeSingleRequest(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	recorder := &elevevent.MemoryRecorder{}
	unit := NewUnit("A", 5, 1, testTiming(), nil, recorder)
	startUnit(t, unit)

	unit.RequestFloor(3, elevconsts.Up)
	if !unit.Marked(3, elevconsts.Up) {
		t.Errorf("Marked(3, Up) = false immediately after RequestFloor, expected true")
	}

	waitForSnapshot(t, unit, "unit idle at floor 3", idleAt(3))

	snapshot := unit.GetState()
	if snapshot.Direction != elevconsts.None {
		t.Errorf("Direction = %v after trip, expected None", snapshot.Direction)
	}
	if unit.Marked(3, elevconsts.Up) {
		t.Errorf("Marked(3, Up) = true after service, expected cleared")
	}
	if recorder.Count(elevevent.DoorOpened) != 1 {
		t.Errorf("DoorOpened count = %d, expected exactly 1", recorder.Count(elevevent.DoorOpened))
	}
	if recorder.Count(elevevent.DoorClosed) != 1 {
		t.Errorf("DoorClosed count = %d, expected exactly 1", recorder.Count(elevevent.DoorClosed))
	}
}

// Every observed snapshot satisfies direction == None <=> state == Idle.
func TestDirectionIdleInvariant(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	unit := NewUnit("A", 8, 0, testTiming(), nil, nil)
	startUnit(t, unit)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			snapshot := unit.GetState()
			if (snapshot.Direction == elevconsts.None) != (snapshot.State == elevconsts.Idle) {
				t.Errorf("Invariant violated: direction %v with state %v", snapshot.Direction, snapshot.State)
				return
			}
			time.Sleep(50 * time.Microsecond)
		}
	}()

	unit.RequestFloor(7, elevconsts.Up)
	unit.RequestFloor(2, elevconsts.Down)
	unit.RequestFloor(5, elevconsts.Up)
	<-done

	waitForSnapshot(t, unit, "unit settled", func(s Snapshot) bool { return s.State == elevconsts.Idle })
}

// A floor may be marked in both arrays at once, and each mark is serviced in
// its own direction.
func TestMarksInBothDirectionsCoexist(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	unit := NewUnit("A", 5, 0, testTiming(), nil, nil)

	unit.RequestFloor(2, elevconsts.Up)
	unit.RequestFloor(2, elevconsts.Down)
	if !unit.Marked(2, elevconsts.Up) || !unit.Marked(2, elevconsts.Down) {
		t.Fatalf("Expected floor 2 marked in both directions")
	}
}

// Sweep order: all marks in the active direction are serviced before
// reversing. From floor 0 with (3, Up) and (1, Down) pending, floor 3 is
// visited first even though floor 1 is closer.
func TestSweepServicesDirectionBeforeReversing(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	recorder := &elevevent.MemoryRecorder{}
	unit := NewUnit("A", 5, 0, testTiming(), nil, recorder)

	unit.RequestFloor(3, elevconsts.Up)
	unit.RequestFloor(1, elevconsts.Down)
	startUnit(t, unit)

	waitForSnapshot(t, unit, "unit idle at floor 1", idleAt(1))

	var doorFloors []int
	for _, record := range recorder.Snapshot() {
		if record.Kind == elevevent.DoorOpened {
			doorFloors = append(doorFloors, record.Floor)
		}
	}
	if len(doorFloors) != 2 || doorFloors[0] != 3 || doorFloors[1] != 1 {
		t.Errorf("Door open sequence = %v, expected [3 1]", doorFloors)
	}
	if recorder.Count(elevevent.DirectionSwitched) < 2 {
		t.Errorf("DirectionSwitched count = %d, expected at least 2 (trip start + reversal)",
			recorder.Count(elevevent.DirectionSwitched))
	}
}

type exchangeHandler struct {
	boardFloor int
	rider      elevrider.Rider

	mtx      sync.Mutex
	boarded  bool
	released []elevrider.Rider
}

func (h *exchangeHandler) ElevatorArrived(unit *Unit, floor int, direction elevconsts.Direction) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.released = append(h.released, unit.UnloadRiders()...)
	if floor == h.boardFloor && !h.boarded {
		unit.LoadRider(h.rider)
		h.boarded = true
	}
}

func (h *exchangeHandler) releasedRiders() []elevrider.Rider {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	riders := make([]elevrider.Rider, len(h.released))
	copy(riders, h.released)
	return riders
}

// Rider boards at floor 0 heading for floor 4; the unit marks floor 4 in the
// up array, carries the rider and drops them off there.
func TestRiderLoadAndUnload(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	recorder := &elevevent.MemoryRecorder{}
	handler := &exchangeHandler{boardFloor: 0, rider: elevrider.NewRider("Bob", 4)}
	unit := NewUnit("A", 5, 2, testTiming(), handler, recorder)
	startUnit(t, unit)

	unit.RequestFloor(0, elevconsts.Up)
	waitForSnapshot(t, unit, "rider delivered", idleAt(4))

	released := handler.releasedRiders()
	if len(released) != 1 || released[0].Name() != "Bob" {
		t.Fatalf("Released riders = %v, expected [Bob->4]", released)
	}
	if len(unit.Riders()) != 0 {
		t.Errorf("Riders() = %v after dropoff, expected empty", unit.Riders())
	}
	if recorder.Count(elevevent.RiderLoaded) != 1 || recorder.Count(elevevent.RiderUnloaded) != 1 {
		t.Errorf("Loaded/Unloaded counts = %d/%d, expected 1/1",
			recorder.Count(elevevent.RiderLoaded), recorder.Count(elevevent.RiderUnloaded))
	}
}

// Force-open held past its maximum: the door close is delayed, an alarm
// record is emitted, and the unit finishes the trip with the flag still set.
func TestForceOpenOverrideRaisesAlarm(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	recorder := &elevevent.MemoryRecorder{}
	unit := NewUnit("A", 5, 0, testTiming(), nil, recorder)
	unit.ForceOpenDoor(true)
	startUnit(t, unit)

	unit.RequestFloor(2, elevconsts.Up)
	waitForSnapshot(t, unit, "unit idle after forced-open stop", idleAt(2))

	if recorder.Count(elevevent.ForceDoorAlarm) != 1 {
		t.Errorf("ForceDoorAlarm count = %d, expected 1", recorder.Count(elevevent.ForceDoorAlarm))
	}
	records := recorder.Snapshot()
	alarmIndex, closeIndex := -1, -1
	for i, record := range records {
		switch record.Kind {
		case elevevent.ForceDoorAlarm:
			alarmIndex = i
		case elevevent.DoorClosed:
			closeIndex = i
		}
	}
	if alarmIndex == -1 || closeIndex == -1 || alarmIndex > closeIndex {
		t.Errorf("Expected alarm before door close, got alarm index %d, close index %d", alarmIndex, closeIndex)
	}
}

// Force-close cuts the dwell short: with a long dwell configured and
// force-close held, the stop completes much faster than the dwell.
func TestForceCloseShortensDwell(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	timing := testTiming()
	timing.DoorOpenDuration = 2 * time.Second
	unit := NewUnit("A", 5, 0, timing, nil, nil)
	unit.ForceCloseDoor(true)
	startUnit(t, unit)

	start := time.Now()
	unit.RequestFloor(1, elevconsts.Up)
	waitForSnapshot(t, unit, "unit idle at floor 1", idleAt(1))

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop with force-close held took %v, expected well under the 2s dwell", elapsed)
	}
}

// A request marked behind the sweep is not lost: it is serviced on a later
// pass.
func TestRequestBehindSweepServicedNextPass(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	unit := NewUnit("A", 10, 0, testTiming(), nil, nil)
	startUnit(t, unit)

	unit.RequestFloor(9, elevconsts.Up)
	waitForSnapshot(t, unit, "unit past floor 3", func(s Snapshot) bool { return s.Floor > 3 })

	// Now behind the upward sweep.
	unit.RequestFloor(1, elevconsts.Down)
	waitForSnapshot(t, unit, "late request serviced", func(s Snapshot) bool {
		return !unit.Marked(1, elevconsts.Down)
	})
	waitForSnapshot(t, unit, "unit idle at floor 1", idleAt(1))
}

func expectPanic(t *testing.T, what string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic from %v, got none", what)
		}
	}()
	f()
}

func TestOutOfRangeFailsFast(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	unit := NewUnit("A", 5, 0, testTiming(), nil, nil)

	expectPanic(t, "RequestFloor(-1, Up)", func() { unit.RequestFloor(-1, elevconsts.Up) })
	expectPanic(t, "RequestFloor(5, Down)", func() { unit.RequestFloor(5, elevconsts.Down) })
	expectPanic(t, "RequestFloor(2, None)", func() { unit.RequestFloor(2, elevconsts.None) })
	expectPanic(t, "NewUnit with bad start floor", func() {
		NewUnit("B", 5, 9, testTiming(), nil, nil)
	})
	expectPanic(t, "NewUnit with one floor", func() {
		NewUnit("B", 1, 0, testTiming(), nil, nil)
	})
}
