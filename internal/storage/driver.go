package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// DefaultCapacity is the card size reported by drivers that were not given
// an explicit capacity.
const DefaultCapacity uint64 = 4 << 30

// CardType identifies the kind of card reported by the driver at mount time.
type CardType int

const (
	CardNone CardType = iota
	CardMMC
	CardSDSC
	CardSDHC
	CardUnknown
)

// String returns the name printed in card info output
func (c CardType) String() string {
	switch c {
	case CardNone:
		return "NONE"
	case CardMMC:
		return "MMC"
	case CardSDSC:
		return "SDSC"
	case CardSDHC:
		return "SDHC"
	default:
		return "UNKNOWN"
	}
}

// Driver is the block-device/filesystem driver underneath a Backend.
//
// Attach initialises the bus, mounts the card and hands back exclusive
// ownership of the mounted volume. A failed Attach must not leave any bus
// resource acquired.
type Driver interface {
	Attach() (Volume, error)
}

// Volume is a mounted card. The Backend that received it from Attach is its
// only owner; Close releases the card and the bus.
type Volume interface {
	FS() afero.Fs
	CardType() CardType
	TotalBytes() uint64
	UsedBytes() uint64
	Sync() error
	Close() error
}

// volume is the afero-backed Volume shared by the bundled drivers.
type volume struct {
	fs       afero.Fs
	cardType CardType
	total    uint64
	release  func()
}

func (v *volume) FS() afero.Fs       { return v.fs }
func (v *volume) CardType() CardType { return v.cardType }
func (v *volume) TotalBytes() uint64 { return v.total }

// UsedBytes sums the sizes of every regular file on the volume.
func (v *volume) UsedBytes() uint64 {
	var used uint64
	_ = afero.Walk(v.fs, "/", func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && info.Size() > 0 {
			used += uint64(info.Size())
		}
		return nil
	})
	if used > v.total {
		return v.total
	}
	return used
}

// Sync is a no-op: every Backend operation closes its file before returning.
func (v *volume) Sync() error { return nil }

func (v *volume) Close() error {
	if v.release != nil {
		v.release()
		v.release = nil
	}
	return nil
}

// DirDriver mounts a host directory as the card root. It is how the host
// tools operate on a card image copied off the device or on the card's own
// mount point.
type DirDriver struct {
	Root     string
	Capacity uint64
}

// Attach implements Driver
func (d *DirDriver) Attach() (Volume, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, &Error{Type: ErrTypeMountUnavailable, Op: "mount", Path: d.Root, Message: "card root not accessible", Err: err}
	}
	if !info.IsDir() {
		return nil, &Error{Type: ErrTypeMountUnavailable, Op: "mount", Path: d.Root, Message: "card root is not a directory"}
	}

	total := d.Capacity
	if total == 0 {
		total = DefaultCapacity
	}

	return &volume{
		fs:       afero.NewBasePathFs(afero.NewOsFs(), d.Root),
		cardType: CardSDHC,
		total:    total,
	}, nil
}

// MemDriver is an in-memory card. Its contents survive unmount and remount,
// so it behaves like a physical card that stays in the slot. The card can be
// ejected (mount fails) or write protected (every write fails) to exercise
// failure paths.
type MemDriver struct {
	mu           sync.Mutex
	fs           afero.Fs
	capacity     uint64
	cardType     CardType
	present      bool
	writeProtect bool
	attached     bool
	attachCount  int
}

// NewMemDriver creates an empty, inserted in-memory card.
// A capacity of 0 selects DefaultCapacity.
func NewMemDriver(capacity uint64) *MemDriver {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &MemDriver{
		fs:       afero.NewMemMapFs(),
		capacity: capacity,
		cardType: CardSDHC,
		present:  true,
	}
}

// Attach implements Driver
func (d *MemDriver) Attach() (Volume, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.present {
		return nil, &Error{Type: ErrTypeMountUnavailable, Op: "mount", Message: "no card detected"}
	}
	if d.attached {
		return nil, &Error{Type: ErrTypeMountUnavailable, Op: "mount", Message: "bus already in use"}
	}

	fs := d.fs
	if d.writeProtect {
		fs = afero.NewReadOnlyFs(fs)
	}

	d.attached = true
	d.attachCount++

	return &volume{
		fs:       fs,
		cardType: d.cardType,
		total:    d.capacity,
		release: func() {
			d.mu.Lock()
			d.attached = false
			d.mu.Unlock()
		},
	}, nil
}

// Eject removes the card from the slot. Already mounted volumes keep working
// on the old contents until unmounted; later mounts fail.
func (d *MemDriver) Eject() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present = false
}

// Insert puts the card back.
func (d *MemDriver) Insert() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present = true
}

// SetWriteProtect toggles the write-protect switch. It takes effect on the
// next mount.
func (d *MemDriver) SetWriteProtect(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeProtect = on
}

// Attached reports whether a Backend currently owns the bus.
func (d *MemDriver) Attached() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attached
}

// AttachCount returns the number of successful mounts so far.
func (d *MemDriver) AttachCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attachCount
}

// Files gives tests direct access to the card contents, bypassing the
// Backend (like pulling the card and reading it in a PC).
func (d *MemDriver) Files() afero.Fs {
	return d.fs
}

// String implements fmt.Stringer
func (d *MemDriver) String() string {
	return fmt.Sprintf("mem(%d bytes)", d.capacity)
}
