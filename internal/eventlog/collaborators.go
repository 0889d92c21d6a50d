package eventlog

import (
	"math"
	"runtime"
	"time"
)

// Clock supplies the elapsed-milliseconds timestamp of each line
type Clock interface {
	Millis() uint64
}

// ClockFunc adapts a function to Clock
type ClockFunc func() uint64

func (f ClockFunc) Millis() uint64 { return f() }

// HeapReader supplies the live free-memory reading used by diagnostic fields
type HeapReader interface {
	FreeHeap() uint32
}

// HeapFunc adapts a function to HeapReader
type HeapFunc func() uint32

func (f HeapFunc) FreeHeap() uint32 { return f() }

// DefaultCPUMHz is the controller's nominal clock
const DefaultCPUMHz = 240

// Chip identifies the processor in boot-start records.
// A zero CPUMHz is written as is.
type Chip struct {
	Model  string
	CPUMHz uint32
}

// monotonicClock counts milliseconds since it was created
type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a Clock starting at zero now
func NewMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Millis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// RuntimeHeap reports heap memory reserved from the OS but not in use
type RuntimeHeap struct{}

func (RuntimeHeap) FreeHeap() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	free := ms.HeapSys - ms.HeapInuse
	if free > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(free)
}

// HostChip describes the machine the process runs on. The host clock
// cannot be read portably, so records carry the controller's nominal
// DefaultCPUMHz.
func HostChip() Chip {
	return Chip{Model: runtime.GOOS + "/" + runtime.GOARCH, CPUMHz: DefaultCPUMHz}
}
