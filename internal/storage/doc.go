// Package storage provides synchronous file access to the controller's
// storage card.
//
// A Driver attaches the card and returns a Volume: an afero.Fs plus the
// card type, capacity and usage. Two drivers are included:
//
//	DirDriver   a card image rooted at a host directory (or a mounted card)
//	MemDriver   an in-memory card that can be ejected or write protected
//
// Backend owns the mount lifecycle. While mounted it holds the Volume and
// serves the file primitives (ReadAll, WriteAll, Append, AppendLine,
// Delete, Rename, Exists, Size, MakeDir, RemoveDir, List, Flush). While
// unmounted every primitive fails with MountUnavailable and the driver is
// not touched. Mount on a mounted backend is a no-op; Unmount syncs and is
// idempotent.
//
// Failures are *Error values carrying an ErrorType:
//
//	MountUnavailable  card absent or not mounted
//	NotFound          path does not exist
//	OpenFailure       path exists but cannot be opened
//	ParseFailure      document cannot be decoded
//	FieldInvalid      value rejected for a field
//	WriteFailure      write, delete or directory change failed
//	RenameFailure     rename failed
//
// Use the Is* helpers (IsUnavailable, IsNotFound, ...) or TypeOf to
// classify an error, and FaultCode to get the code written to the error
// log.
//
// Backend has no internal locking. Callers sharing one across goroutines
// serialise access themselves.
package storage
