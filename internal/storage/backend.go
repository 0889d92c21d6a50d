package storage

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Backend owns the mount lifecycle of one card and exposes primitive,
// synchronous file operations on it. It knows nothing about file content.
//
// Every operation on an unmounted Backend fails immediately with an
// ErrTypeMountUnavailable error without touching the driver.
//
// A Backend performs no locking. When several goroutines share one, the
// owner must serialise access to the whole storage stack.
type Backend struct {
	driver Driver
	vol    Volume
	log    *zap.Logger
}

// Info is a point-in-time snapshot of the card state
type Info struct {
	Mounted  bool
	CardType CardType
	Total    uint64
	Used     uint64
	Free     uint64
}

// Entry describes one item returned by List
type Entry struct {
	Name  string
	Size  uint64
	IsDir bool
}

// NewBackend creates an unmounted Backend over driver.
// A nil logger disables diagnostic output.
func NewBackend(driver Driver, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		driver: driver,
		log:    logger.Named("storage"),
	}
}

// Mount attaches the card. Mounting an already mounted Backend is a no-op
// that returns nil. On failure the Backend stays unmounted.
func (b *Backend) Mount() error {
	if b.vol != nil {
		return nil
	}

	b.log.Debug("Mounting card")

	vol, err := b.driver.Attach()
	if err != nil {
		b.log.Warn("Mount failed", zap.Error(err))
		if _, ok := TypeOf(err); ok {
			return err
		}
		return &Error{Type: ErrTypeMountUnavailable, Op: "mount", Err: err}
	}

	if vol.CardType() == CardNone {
		_ = vol.Close()
		b.log.Warn("Mount failed: no card detected")
		return &Error{Type: ErrTypeMountUnavailable, Op: "mount", Message: "no card detected"}
	}

	b.vol = vol
	b.log.Info("Card mounted",
		zap.Stringer("type", vol.CardType()),
		zap.Uint64("total_bytes", vol.TotalBytes()),
		zap.Uint64("free_bytes", b.Free()),
	)
	return nil
}

// Unmount flushes and releases the card. It is safe to call repeatedly.
func (b *Backend) Unmount() error {
	if b.vol == nil {
		return nil
	}

	vol := b.vol
	b.vol = nil

	syncErr := vol.Sync()
	closeErr := vol.Close()
	b.log.Info("Card unmounted")

	if syncErr != nil {
		return &Error{Type: ErrTypeWrite, Op: "unmount", Message: "flush failed", Err: syncErr}
	}
	if closeErr != nil {
		return &Error{Type: ErrTypeWrite, Op: "unmount", Err: closeErr}
	}
	return nil
}

// IsAvailable reports whether the card is mounted
func (b *Backend) IsAvailable() bool {
	return b.vol != nil
}

// Capacity returns the card size in bytes, 0 when unmounted
func (b *Backend) Capacity() uint64 {
	if b.vol == nil {
		return 0
	}
	return b.vol.TotalBytes()
}

// Used returns the bytes in use, 0 when unmounted
func (b *Backend) Used() uint64 {
	if b.vol == nil {
		return 0
	}
	return b.vol.UsedBytes()
}

// Free returns the bytes available, 0 when unmounted
func (b *Backend) Free() uint64 {
	if b.vol == nil {
		return 0
	}
	total, used := b.vol.TotalBytes(), b.vol.UsedBytes()
	if used >= total {
		return 0
	}
	return total - used
}

// Info returns a snapshot of the card state
func (b *Backend) Info() Info {
	if b.vol == nil {
		return Info{CardType: CardNone}
	}
	return Info{
		Mounted:  true,
		CardType: b.vol.CardType(),
		Total:    b.Capacity(),
		Used:     b.Used(),
		Free:     b.Free(),
	}
}

func (b *Backend) fs(op, path string) (afero.Fs, error) {
	if b.vol == nil {
		return nil, errUnavailable(op, path)
	}
	if path == "" {
		return nil, &Error{Type: ErrTypeOpen, Op: op, Message: "empty path"}
	}
	return b.vol.FS(), nil
}

// ReadAll returns the complete content of path
func (b *Backend) ReadAll(path string) (string, error) {
	fs, err := b.fs("read", path)
	if err != nil {
		return "", err
	}

	f, err := fs.Open(path)
	if err != nil {
		b.log.Debug("Cannot open file for reading", zap.String("path", path), zap.Error(err))
		return "", classify(ErrTypeOpen, "read", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", classify(ErrTypeOpen, "read", path, err)
	}
	return string(data), nil
}

// WriteAll replaces the content of path, creating it if needed
func (b *Backend) WriteAll(path, content string) error {
	return b.write("write", path, content, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Append adds content to the end of path, creating it if needed
func (b *Backend) Append(path, content string) error {
	return b.write("append", path, content, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

// AppendLine appends line followed by a newline
func (b *Backend) AppendLine(path, line string) error {
	return b.Append(path, line+"\n")
}

func (b *Backend) write(op, path, content string, flag int) error {
	fs, err := b.fs(op, path)
	if err != nil {
		return err
	}

	f, err := fs.OpenFile(path, flag, 0644)
	if err != nil {
		b.log.Debug("Cannot open file for writing", zap.String("path", path), zap.Error(err))
		return classify(ErrTypeWrite, op, path, err)
	}

	n, werr := io.WriteString(f, content)
	cerr := f.Close()

	if werr != nil {
		return &Error{Type: ErrTypeWrite, Op: op, Path: path, Err: werr}
	}
	if n != len(content) {
		return &Error{Type: ErrTypeWrite, Op: op, Path: path, Message: "short write", Err: io.ErrShortWrite}
	}
	if cerr != nil {
		return &Error{Type: ErrTypeWrite, Op: op, Path: path, Err: cerr}
	}
	return nil
}

// Delete removes the file at path
func (b *Backend) Delete(path string) error {
	fs, err := b.fs("delete", path)
	if err != nil {
		return err
	}

	if ok, _ := afero.Exists(fs, path); !ok {
		b.log.Debug("File does not exist", zap.String("path", path))
		return &Error{Type: ErrTypeNotFound, Op: "delete", Path: path}
	}

	if err := fs.Remove(path); err != nil {
		b.log.Warn("Delete failed", zap.String("path", path), zap.Error(err))
		return classify(ErrTypeWrite, "delete", path, err)
	}

	b.log.Debug("File deleted", zap.String("path", path))
	return nil
}

// Rename moves oldPath to newPath
func (b *Backend) Rename(oldPath, newPath string) error {
	fs, err := b.fs("rename", oldPath)
	if err != nil {
		return err
	}
	if newPath == "" {
		return &Error{Type: ErrTypeRename, Op: "rename", Path: oldPath, Message: "empty target path"}
	}

	if ok, _ := afero.Exists(fs, oldPath); !ok {
		b.log.Debug("File does not exist", zap.String("path", oldPath))
		return &Error{Type: ErrTypeNotFound, Op: "rename", Path: oldPath}
	}

	if err := fs.Rename(oldPath, newPath); err != nil {
		b.log.Warn("Rename failed", zap.String("from", oldPath), zap.String("to", newPath), zap.Error(err))
		return &Error{Type: ErrTypeRename, Op: "rename", Path: oldPath, Message: "to " + newPath, Err: err}
	}

	b.log.Debug("File renamed", zap.String("from", oldPath), zap.String("to", newPath))
	return nil
}

// Exists reports whether path exists. It is false when unmounted.
func (b *Backend) Exists(path string) bool {
	fs, err := b.fs("exists", path)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(fs, path)
	return ok
}

// Size returns the size of the file at path, 0 if it is missing or the
// card is unmounted
func (b *Backend) Size(path string) uint64 {
	fs, err := b.fs("size", path)
	if err != nil {
		return 0
	}
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

// MakeDir creates the directory at path, including missing parents
func (b *Backend) MakeDir(path string) error {
	fs, err := b.fs("mkdir", path)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(path, 0755); err != nil {
		b.log.Warn("Create directory failed", zap.String("path", path), zap.Error(err))
		return classify(ErrTypeWrite, "mkdir", path, err)
	}
	b.log.Debug("Directory created", zap.String("path", path))
	return nil
}

// RemoveDir removes the empty directory at path
func (b *Backend) RemoveDir(path string) error {
	fs, err := b.fs("rmdir", path)
	if err != nil {
		return err
	}

	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return classify(ErrTypeWrite, "rmdir", path, err)
	}
	if !isDir {
		return &Error{Type: ErrTypeWrite, Op: "rmdir", Path: path, Message: "not a directory"}
	}
	if empty, _ := afero.IsEmpty(fs, path); !empty {
		return &Error{Type: ErrTypeWrite, Op: "rmdir", Path: path, Message: "directory not empty"}
	}

	if err := fs.Remove(path); err != nil {
		b.log.Warn("Remove directory failed", zap.String("path", path), zap.Error(err))
		return classify(ErrTypeWrite, "rmdir", path, err)
	}
	b.log.Debug("Directory removed", zap.String("path", path))
	return nil
}

// List returns the entries of dir sorted by name
func (b *Backend) List(dir string) ([]Entry, error) {
	fs, err := b.fs("list", dir)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, classify(ErrTypeOpen, "list", dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		e := Entry{Name: info.Name(), IsDir: info.IsDir()}
		if !e.IsDir && info.Size() > 0 {
			e.Size = uint64(info.Size())
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Flush pushes pending writes to the card
func (b *Backend) Flush() error {
	if b.vol == nil {
		return errUnavailable("flush", "")
	}
	if err := b.vol.Sync(); err != nil {
		return &Error{Type: ErrTypeWrite, Op: "flush", Err: err}
	}
	return nil
}
