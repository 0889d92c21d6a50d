package eventlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/rcstore/internal/faults"
	"github.com/muurk/rcstore/internal/storage"
)

// DefaultMaxFileSize is the size above which a channel is rotated (1 MiB)
const DefaultMaxFileSize uint64 = 1 << 20

// Backend is the subset of *storage.Backend the router needs
type Backend interface {
	IsAvailable() bool
	Exists(path string) bool
	Size(path string) uint64
	ReadAll(path string) (string, error)
	AppendLine(path, line string) error
	Delete(path string) error
	Rename(oldPath, newPath string) error
}

// Options configures a Router. Zero values select host defaults.
type Options struct {
	Clock       Clock      // Defaults to a monotonic clock started by New
	Heap        HeapReader // Defaults to RuntimeHeap
	Chip        Chip       // Defaults to HostChip()
	Logger      *zap.Logger
	MaxFileSize uint64 // Defaults to DefaultMaxFileSize
}

// Router appends structured event lines to the four log channels.
//
// Each Log* call formats exactly one record and appends it immediately,
// rotating the channel first when it has grown past the size limit. Nothing
// is buffered. Failures are returned for callers that want to react and
// are otherwise harmless: the router never panics on storage errors.
//
// A Router performs no locking; see storage.Backend.
type Router struct {
	backend Backend
	clock   Clock
	heap    HeapReader
	chip    Chip
	maxSize uint64
	log     *zap.Logger
}

// New creates a Router over backend
func New(backend Backend, opts Options) *Router {
	r := &Router{
		backend: backend,
		clock:   opts.Clock,
		heap:    opts.Heap,
		chip:    opts.Chip,
		maxSize: opts.MaxFileSize,
		log:     opts.Logger,
	}
	if r.clock == nil {
		r.clock = NewMonotonicClock()
	}
	if r.heap == nil {
		r.heap = RuntimeHeap{}
	}
	if r.chip.Model == "" {
		r.chip = HostChip()
	}
	if r.maxSize == 0 {
		r.maxSize = DefaultMaxFileSize
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	r.log = r.log.Named("eventlog")
	return r
}

// Begin reports whether the card is ready for logging
func (r *Router) Begin() error {
	if !r.backend.IsAvailable() {
		r.log.Warn("Card not available, logging disabled")
		return storage.NewError(storage.ErrTypeMountUnavailable, "begin", "", "card not mounted", nil)
	}
	r.log.Debug("Ready")
	return nil
}

// MaxFileSize returns the rotation threshold in bytes
func (r *Router) MaxFileSize() uint64 {
	return r.maxSize
}

// RotateIfNeeded moves the channel's active file to its backup when it is
// larger than the limit. Any previous backup is deleted first, so exactly
// one older generation is kept.
func (r *Router) RotateIfNeeded(ch Channel) error {
	path := ch.Path()
	size := r.backend.Size(path)
	if size <= r.maxSize {
		return nil
	}

	backup := ch.BackupPath()
	r.log.Info("Rotating log",
		zap.String("path", path),
		zap.Uint64("size_bytes", size),
		zap.String("backup", backup),
	)

	if r.backend.Exists(backup) {
		if err := r.backend.Delete(backup); err != nil {
			return err
		}
	}
	return r.backend.Rename(path, backup)
}

func (r *Router) timestamp() uint64 {
	return r.clock.Millis()
}

// write rotates the channel if needed and appends text as one line. A
// failed rotation is logged and the append still goes ahead on the
// oversized file.
func (r *Router) write(ch Channel, text string) error {
	if !r.backend.IsAvailable() {
		return storage.NewError(storage.ErrTypeMountUnavailable, "log", ch.Path(), "card not mounted", nil)
	}

	if err := r.RotateIfNeeded(ch); err != nil {
		r.log.Warn("Log rotation failed", zap.Stringer("channel", ch), zap.Error(err))
	}

	if err := r.backend.AppendLine(ch.Path(), text); err != nil {
		r.log.Debug("Log append failed", zap.Stringer("channel", ch), zap.Error(err))
		return err
	}
	return nil
}

// LogBootStart records the start of a boot on the boot channel
func (r *Router) LogBootStart(reason string, freeHeap uint32, version string) error {
	l := newLine(r.timestamp(), LevelInfo, "Boot Start").
		field("Reason", reason).
		field("Version", version).
		field("Free Heap", bytesValue(freeHeap)).
		field("Chip", r.chip.Model).
		field("CPU", strconv.FormatUint(uint64(r.chip.CPUMHz), 10)+" MHz")

	return r.write(Boot, l.String())
}

// LogSetupStep records the result of initialising one module. An empty
// message is left out.
func (r *Router) LogSetupStep(module string, success bool, message string) error {
	level, status := LevelInfo, "OK"
	if !success {
		level, status = LevelError, "FAILED"
	}

	l := newLine(r.timestamp(), level, "Setup: "+module).tag(status)
	if message != "" {
		l.text(message)
	}
	return r.write(Boot, l.String())
}

// LogBootComplete writes a blank separator line followed by the boot summary
func (r *Router) LogBootComplete(totalTimeMs uint32, success bool) error {
	level, status := LevelInfo, "SUCCESS"
	if !success {
		level, status = LevelError, "FAILED"
	}

	l := newLine(r.timestamp(), level, "Boot Complete").
		field("Time", strconv.FormatUint(uint64(totalTimeMs), 10)+"ms").
		field("Free Heap", bytesValue(r.heap.FreeHeap())).
		tag(status)

	// The separator is best effort; the summary line decides the result
	if err := r.write(Boot, ""); err != nil {
		r.log.Debug("Boot separator not written", zap.Error(err))
	}
	return r.write(Boot, l.String())
}

// LogBattery records a battery reading. Critical takes precedence over low.
func (r *Router) LogBattery(voltage float64, percent uint8, isLow, isCritical bool) error {
	level := LevelInfo
	switch {
	case isCritical:
		level = LevelCritical
	case isLow:
		level = LevelWarn
	}

	l := newLine(r.timestamp(), level, "Battery").
		field("Voltage", strconv.FormatFloat(voltage, 'f', 2, 64)+"V").
		field("Percent", strconv.Itoa(int(percent))+"%")

	switch {
	case isCritical:
		l.text("[CRITICAL]")
	case isLow:
		l.text("[LOW]")
	}
	return r.write(Battery, l.String())
}

// LogConnection records a radio link event. An rssi of 0 means unknown and
// is left out.
func (r *Router) LogConnection(peerMAC, event string, rssi int8) error {
	l := newLine(r.timestamp(), LevelInfo, "ESP-NOW: "+event).
		field("Peer", peerMAC)
	if rssi != 0 {
		l.field("RSSI", dBm(rssi))
	}
	return r.write(Connection, l.String())
}

// LogConnectionStats records link counters. The loss percentage is only
// written when at least one packet was sent.
func (r *Router) LogConnectionStats(peerMAC string, sent, received, lost uint32, avgRSSI int8) error {
	l := newLine(r.timestamp(), LevelInfo, "ESP-NOW Stats").
		field("Peer", peerMAC).
		field("Sent", strconv.FormatUint(uint64(sent), 10)).
		field("Received", strconv.FormatUint(uint64(received), 10)).
		field("Lost", strconv.FormatUint(uint64(lost), 10))

	if sent > 0 {
		loss := float64(lost) * 100 / float64(sent)
		l.field("Loss", strconv.FormatFloat(loss, 'f', 1, 64)+"%")
	}

	l.field("Avg RSSI", dBm(avgRSSI))
	return r.write(Connection, l.String())
}

// LogError records a fault on the error channel. A freeHeap of 0 is
// replaced by the live reading.
func (r *Router) LogError(module string, code faults.Code, message string, freeHeap uint32) error {
	if freeHeap == 0 {
		freeHeap = r.heap.FreeHeap()
	}

	l := newLine(r.timestamp(), LevelError, module).
		field("Code", strconv.Itoa(int(code))).
		text(message).
		field("Free Heap", bytesValue(freeHeap))

	return r.write(Error, l.String())
}

// LogFailure records err on the error channel, deriving the code from the
// storage error taxonomy. Errors from outside the storage stack are logged
// with faults.None.
func (r *Router) LogFailure(module string, err error) error {
	if err == nil {
		return nil
	}
	return r.LogError(module, storage.FaultCode(err), err.Error(), 0)
}

// LogCrash records a processor exception on the error channel
func (r *Router) LogCrash(pc, excVAddr, excCause uint32) error {
	l := newLine(r.timestamp(), LevelFatal, "CRASH").
		field("PC", hex(pc)).
		field("ExcVAddr", hex(excVAddr)).
		field("ExcCause", strconv.FormatUint(uint64(excCause), 10)).
		field("Free Heap", bytesValue(r.heap.FreeHeap()))

	return r.write(Error, l.String())
}

// ClearAllLogs deletes the active file of every channel. Backups are kept.
// It does nothing when the card is unavailable; missing files are not an
// error.
func (r *Router) ClearAllLogs() error {
	if !r.backend.IsAvailable() {
		return nil
	}

	r.log.Info("Clearing all logs")

	var errs []error
	for _, ch := range Channels {
		if err := r.backend.Delete(ch.Path()); err != nil && !storage.IsNotFound(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChannelStat describes the files of one channel
type ChannelStat struct {
	Channel      Channel
	Path         string
	Exists       bool
	Size         uint64
	BackupExists bool
	BackupSize   uint64
}

// Stats returns the state of every channel. It is empty when the card is
// unavailable.
func (r *Router) Stats() []ChannelStat {
	if !r.backend.IsAvailable() {
		return nil
	}

	stats := make([]ChannelStat, 0, len(Channels))
	for _, ch := range Channels {
		st := ChannelStat{Channel: ch, Path: ch.Path()}
		if r.backend.Exists(st.Path) {
			st.Exists = true
			st.Size = r.backend.Size(st.Path)
		}
		if r.backend.Exists(ch.BackupPath()) {
			st.BackupExists = true
			st.BackupSize = r.backend.Size(ch.BackupPath())
		}
		stats = append(stats, st)
	}
	return stats
}

// Read returns the full content of a channel's active file or its backup
func (r *Router) Read(ch Channel, backup bool) (string, error) {
	path := ch.Path()
	if backup {
		path = ch.BackupPath()
	}
	if !r.backend.IsAvailable() {
		return "", storage.NewError(storage.ErrTypeMountUnavailable, "read", path, "card not mounted", nil)
	}
	return r.backend.ReadAll(path)
}

// Tail returns the last n lines of a channel's active file. n <= 0 returns
// every line.
func (r *Router) Tail(ch Channel, n int) ([]string, error) {
	text, err := r.Read(ch, false)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// FormatInfo returns a human-readable summary of the channel files
func (r *Router) FormatInfo() string {
	var b strings.Builder

	b.WriteString("=== Log Files ===\n")
	if !r.backend.IsAvailable() {
		b.WriteString("Card: not available\n")
		return b.String()
	}

	for _, st := range r.Stats() {
		if st.Exists {
			b.WriteString(fmt.Sprintf("  %-16s %.2f KB", st.Path+":", float64(st.Size)/1024))
		} else {
			b.WriteString(fmt.Sprintf("  %-16s [not exist]", st.Path+":"))
		}
		if st.BackupExists {
			b.WriteString(fmt.Sprintf("  (backup %.2f KB)", float64(st.BackupSize)/1024))
		}
		b.WriteString("\n")
	}
	return b.String()
}
