package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func newMounted(t *testing.T) (*Backend, *MemDriver) {
	t.Helper()
	drv := NewMemDriver(1 << 20)
	b := NewBackend(drv, nil)
	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Unmount() })
	return b, drv
}

func TestMountLifecycle(t *testing.T) {
	drv := NewMemDriver(0)
	b := NewBackend(drv, nil)

	if b.IsAvailable() {
		t.Fatal("new backend should be unmounted")
	}

	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if !b.IsAvailable() || !drv.Attached() {
		t.Fatal("backend should own the card after Mount()")
	}

	// Second mount is a no-op
	if err := b.Mount(); err != nil {
		t.Errorf("second Mount() error = %v, want nil", err)
	}
	if drv.AttachCount() != 1 {
		t.Errorf("AttachCount() = %d, want 1 (second mount must not re-attach)", drv.AttachCount())
	}

	if err := b.Unmount(); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if b.IsAvailable() || drv.Attached() {
		t.Fatal("Unmount() should release the card")
	}

	// Idempotent
	if err := b.Unmount(); err != nil {
		t.Errorf("second Unmount() error = %v", err)
	}
}

func TestMountNoCard(t *testing.T) {
	drv := NewMemDriver(0)
	drv.Eject()
	b := NewBackend(drv, nil)

	err := b.Mount()
	if !IsUnavailable(err) {
		t.Fatalf("Mount() error = %v, want MountUnavailable", err)
	}
	if b.IsAvailable() {
		t.Error("backend must stay unmounted after a failed mount")
	}
	if drv.Attached() {
		t.Error("failed mount must not hold the bus")
	}

	drv.Insert()
	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() after Insert() error = %v", err)
	}
}

func TestDirDriverMissingRoot(t *testing.T) {
	b := NewBackend(&DirDriver{Root: filepath.Join(t.TempDir(), "missing")}, nil)
	if err := b.Mount(); !IsUnavailable(err) {
		t.Fatalf("Mount() error = %v, want MountUnavailable", err)
	}
}

func TestDirDriverRootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.img")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	b := NewBackend(&DirDriver{Root: path}, nil)
	if err := b.Mount(); !IsUnavailable(err) {
		t.Fatalf("Mount() error = %v, want MountUnavailable", err)
	}
}

func TestDirDriverReadWrite(t *testing.T) {
	root := t.TempDir()
	b := NewBackend(&DirDriver{Root: root, Capacity: 1 << 20}, nil)
	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer b.Unmount()

	if err := b.WriteAll("/config_main.json", "{}"); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "config_main.json"))
	if err != nil {
		t.Fatalf("file not written under card root: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("content = %q, want %q", data, "{}")
	}

	if b.Capacity() != 1<<20 {
		t.Errorf("Capacity() = %d, want %d", b.Capacity(), 1<<20)
	}
	if b.Used() != 2 {
		t.Errorf("Used() = %d, want 2", b.Used())
	}
}

func TestUnmountedOperationsFail(t *testing.T) {
	b := NewBackend(NewMemDriver(0), nil)

	if _, err := b.ReadAll("/a"); !IsUnavailable(err) {
		t.Errorf("ReadAll() error = %v, want MountUnavailable", err)
	}
	if err := b.WriteAll("/a", "x"); !IsUnavailable(err) {
		t.Errorf("WriteAll() error = %v, want MountUnavailable", err)
	}
	if err := b.Append("/a", "x"); !IsUnavailable(err) {
		t.Errorf("Append() error = %v, want MountUnavailable", err)
	}
	if err := b.AppendLine("/a", "x"); !IsUnavailable(err) {
		t.Errorf("AppendLine() error = %v, want MountUnavailable", err)
	}
	if err := b.Delete("/a"); !IsUnavailable(err) {
		t.Errorf("Delete() error = %v, want MountUnavailable", err)
	}
	if err := b.Rename("/a", "/b"); !IsUnavailable(err) {
		t.Errorf("Rename() error = %v, want MountUnavailable", err)
	}
	if err := b.MakeDir("/d"); !IsUnavailable(err) {
		t.Errorf("MakeDir() error = %v, want MountUnavailable", err)
	}
	if err := b.RemoveDir("/d"); !IsUnavailable(err) {
		t.Errorf("RemoveDir() error = %v, want MountUnavailable", err)
	}
	if err := b.Flush(); !IsUnavailable(err) {
		t.Errorf("Flush() error = %v, want MountUnavailable", err)
	}
	if _, err := b.List("/"); !IsUnavailable(err) {
		t.Errorf("List() error = %v, want MountUnavailable", err)
	}
	if b.Exists("/a") {
		t.Error("Exists() should be false when unmounted")
	}
	if b.Size("/a") != 0 {
		t.Error("Size() should be 0 when unmounted")
	}
	if b.Capacity() != 0 || b.Used() != 0 || b.Free() != 0 {
		t.Error("Capacity/Used/Free should be 0 when unmounted")
	}
	if info := b.Info(); info.Mounted || info.CardType != CardNone {
		t.Errorf("Info() = %+v, want unmounted", info)
	}
}

func TestWriteReadAppend(t *testing.T) {
	b, _ := newMounted(t)

	if err := b.WriteAll("/f.txt", "hello"); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := b.Append("/f.txt", " world"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := b.AppendLine("/f.txt", "!"); err != nil {
		t.Fatalf("AppendLine() error = %v", err)
	}

	got, err := b.ReadAll("/f.txt")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if want := "hello world!\n"; got != want {
		t.Errorf("ReadAll() = %q, want %q", got, want)
	}
	if b.Size("/f.txt") != uint64(len("hello world!\n")) {
		t.Errorf("Size() = %d, want %d", b.Size("/f.txt"), len("hello world!\n"))
	}

	// Full overwrite, not append
	if err := b.WriteAll("/f.txt", "new"); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	got, _ = b.ReadAll("/f.txt")
	if got != "new" {
		t.Errorf("after overwrite ReadAll() = %q, want %q", got, "new")
	}
}

func TestAppendCreatesFile(t *testing.T) {
	b, _ := newMounted(t)

	if b.Exists("/new.log") {
		t.Fatal("file should not exist yet")
	}
	if err := b.AppendLine("/new.log", "first"); err != nil {
		t.Fatalf("AppendLine() error = %v", err)
	}
	if got, _ := b.ReadAll("/new.log"); got != "first\n" {
		t.Errorf("ReadAll() = %q, want %q", got, "first\n")
	}
}

func TestReadMissing(t *testing.T) {
	b, _ := newMounted(t)

	_, err := b.ReadAll("/missing.json")
	if !IsNotFound(err) {
		t.Fatalf("ReadAll() error = %v, want NotFound", err)
	}
}

func TestEmptyPath(t *testing.T) {
	b, _ := newMounted(t)

	if err := b.WriteAll("", "x"); !IsOpenFailure(err) {
		t.Errorf("WriteAll(\"\") error = %v, want OpenFailure", err)
	}
	if b.Exists("") {
		t.Error("Exists(\"\") should be false")
	}
}

func TestDeleteAndRename(t *testing.T) {
	b, _ := newMounted(t)

	if err := b.Delete("/nope"); !IsNotFound(err) {
		t.Errorf("Delete(missing) error = %v, want NotFound", err)
	}
	if err := b.Rename("/nope", "/other"); !IsNotFound(err) {
		t.Errorf("Rename(missing) error = %v, want NotFound", err)
	}

	_ = b.WriteAll("/a", "A")
	if err := b.Rename("/a", "/b"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if b.Exists("/a") || !b.Exists("/b") {
		t.Error("Rename() should move /a to /b")
	}

	if err := b.Delete("/b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if b.Exists("/b") {
		t.Error("Delete() should remove /b")
	}
}

func TestDirectories(t *testing.T) {
	b, _ := newMounted(t)

	if err := b.MakeDir("/logs/archive"); err != nil {
		t.Fatalf("MakeDir() error = %v", err)
	}
	if !b.Exists("/logs/archive") {
		t.Fatal("directory should exist")
	}

	_ = b.WriteAll("/logs/archive/x", "1")
	if err := b.RemoveDir("/logs/archive"); !IsWriteFailure(err) {
		t.Errorf("RemoveDir(non-empty) error = %v, want WriteFailure", err)
	}

	_ = b.Delete("/logs/archive/x")
	if err := b.RemoveDir("/logs/archive"); err != nil {
		t.Fatalf("RemoveDir() error = %v", err)
	}
	if b.Exists("/logs/archive") {
		t.Error("directory should be gone")
	}

	if err := b.RemoveDir("/missing"); !IsNotFound(err) {
		t.Errorf("RemoveDir(missing) error = %v, want NotFound", err)
	}
}

func TestList(t *testing.T) {
	b, _ := newMounted(t)

	_ = b.WriteAll("/b.log", "12")
	_ = b.WriteAll("/a.log", "1")
	_ = b.MakeDir("/dir")

	entries, err := b.List("/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []Entry{
		{Name: "a.log", Size: 1},
		{Name: "b.log", Size: 2},
		{Name: "dir", IsDir: true},
	}
	if len(entries) != len(want) {
		t.Fatalf("List() = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestCapacityAccounting(t *testing.T) {
	b, _ := newMounted(t)

	if b.Capacity() != 1<<20 {
		t.Errorf("Capacity() = %d, want %d", b.Capacity(), 1<<20)
	}
	if b.Used() != 0 {
		t.Errorf("Used() = %d on empty card", b.Used())
	}

	_ = b.WriteAll("/x", "0123456789")
	if b.Used() != 10 {
		t.Errorf("Used() = %d, want 10", b.Used())
	}
	if b.Free() != 1<<20-10 {
		t.Errorf("Free() = %d, want %d", b.Free(), 1<<20-10)
	}

	info := b.Info()
	if !info.Mounted || info.CardType != CardSDHC || info.Used != 10 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestWriteProtectedCard(t *testing.T) {
	drv := NewMemDriver(0)
	if err := afero.WriteFile(drv.Files(), "/existing", []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	drv.SetWriteProtect(true)

	b := NewBackend(drv, nil)
	if err := b.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer b.Unmount()

	if got, err := b.ReadAll("/existing"); err != nil || got != "keep" {
		t.Errorf("ReadAll() = %q, %v; reads should still work", got, err)
	}
	if err := b.WriteAll("/existing", "x"); !IsWriteFailure(err) {
		t.Errorf("WriteAll() error = %v, want WriteFailure", err)
	}
	if err := b.AppendLine("/new", "x"); !IsWriteFailure(err) {
		t.Errorf("AppendLine() error = %v, want WriteFailure", err)
	}
	if err := b.Rename("/existing", "/moved"); !IsRenameFailure(err) {
		t.Errorf("Rename() error = %v, want RenameFailure", err)
	}
	if err := b.Delete("/existing"); !IsWriteFailure(err) {
		t.Errorf("Delete() error = %v, want WriteFailure", err)
	}
}

func TestContentSurvivesRemount(t *testing.T) {
	drv := NewMemDriver(0)
	b := NewBackend(drv, nil)

	_ = b.Mount()
	_ = b.WriteAll("/persist", "data")
	_ = b.Unmount()

	if b.Exists("/persist") {
		t.Error("Exists() must be false while unmounted")
	}

	_ = b.Mount()
	defer b.Unmount()
	if got, _ := b.ReadAll("/persist"); got != "data" {
		t.Errorf("after remount ReadAll() = %q, want %q", got, "data")
	}
}
