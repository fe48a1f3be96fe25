package elevevent

import (
	"sync"
	"time"

	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

type Kind int

const (
	UnitIdle Kind = iota
	FloorRequested
	RiderLoaded
	RiderUnloaded
	DoorOpened
	DoorClosed
	DirectionSwitched
	ForceDoorAlarm
)

func (k Kind) String() string {
	switch k {
	case UnitIdle:
		return "UnitIdle"
	case FloorRequested:
		return "FloorRequested"
	case RiderLoaded:
		return "RiderLoaded"
	case RiderUnloaded:
		return "RiderUnloaded"
	case DoorOpened:
		return "DoorOpened"
	case DoorClosed:
		return "DoorClosed"
	case DirectionSwitched:
		return "DirectionSwitched"
	case ForceDoorAlarm:
		return "ForceDoorAlarm"
	default:
		return "UnknownKind"
	}
}

// Record is one entry of the observable trace stream: which unit did what,
// where, and when. Direction carries the unit's active travel direction at
// the time of the event (None while idle).
type Record struct {
	Timestamp time.Time
	UnitID    string
	Floor     int
	Kind      Kind
	Direction elevconsts.Direction
}

type Recorder interface {
	Record(record Record)
}

// LogRecorder writes every record to the shared logger.
type LogRecorder struct{}

func (LogRecorder) Record(record Record) {
	Log.Info().
		Str("unit", record.UnitID).
		Int("floor", record.Floor).
		Str("kind", record.Kind.String()).
		Str("direction", record.Direction.String()).
		Msg("trace")
}

// MemoryRecorder accumulates records for later inspection, concurrency-safe.
type MemoryRecorder struct {
	mtx     sync.Mutex
	records []Record
}

func (mr *MemoryRecorder) Record(record Record) {
	mr.mtx.Lock()
	defer mr.mtx.Unlock()
	mr.records = append(mr.records, record)
}

// Snapshot returns a copy of all records seen so far, in arrival order.
func (mr *MemoryRecorder) Snapshot() []Record {
	mr.mtx.Lock()
	defer mr.mtx.Unlock()
	snapshot := make([]Record, len(mr.records))
	copy(snapshot, mr.records)
	return snapshot
}

// Count returns how many records of the given kind have been seen.
func (mr *MemoryRecorder) Count(kind Kind) int {
	mr.mtx.Lock()
	defer mr.mtx.Unlock()
	count := 0
	for _, record := range mr.records {
		if record.Kind == kind {
			count++
		}
	}
	return count
}
