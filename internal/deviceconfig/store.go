package deviceconfig

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/rcstore/internal/storage"
)

// Backend is the subset of *storage.Backend the store needs
type Backend interface {
	IsAvailable() bool
	ReadAll(path string) (string, error)
	WriteAll(path, content string) error
}

// Outcome tells the caller of Begin how the in-memory profile was obtained
type Outcome int

const (
	// OutcomeNone is returned alongside an error
	OutcomeNone Outcome = iota
	// OutcomeLoaded means the stored document was used as-is
	OutcomeLoaded
	// OutcomeRepaired means validation corrected fields and the result was persisted
	OutcomeRepaired
	// OutcomeInitialized means no usable document existed and defaults were persisted
	OutcomeInitialized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeLoaded:
		return "loaded"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options configures a Store
type Options struct {
	// Logger receives diagnostic output. Nil disables it.
	Logger *zap.Logger
}

// Store holds one configuration profile in memory and persists it as a
// JSON document on the card.
//
// Like the backend underneath it, a Store is not safe for concurrent use.
type Store struct {
	backend Backend
	kind    Kind
	main    MainConfig
	peer    PeerConfig
	log     *zap.Logger

	lastFixes []Correction
}

// NewStore creates a store for the given profile, pre-populated with
// compiled defaults. Nothing is read until Begin or Load.
func NewStore(backend Backend, kind Kind, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		kind:    kind,
		log:     logger.Named("config").With(zap.Stringer("profile", kind)),
	}
	s.SetDefaults()
	return s
}

// Kind returns the profile selected at construction
func (s *Store) Kind() Kind { return s.kind }

// IsPeer reports whether the store manages the peer profile
func (s *Store) IsPeer() bool { return s.kind == KindPeer }

// Path returns the card path of the profile document
func (s *Store) Path() string { return s.kind.Path() }

// Main returns the mutable main profile. It panics on a peer store.
func (s *Store) Main() *MainConfig {
	if s.kind != KindMain {
		panic("deviceconfig: Main() called on a peer store")
	}
	return &s.main
}

// Peer returns the mutable peer profile. It panics on a main store.
func (s *Store) Peer() *PeerConfig {
	if s.kind != KindPeer {
		panic("deviceconfig: Peer() called on a main store")
	}
	return &s.peer
}

// Begin loads, validates and (when needed) persists the profile.
//
// The only error is an unavailable card, in which case the in-memory
// profile is left untouched. In every other case the profile is valid
// when Begin returns, and the outcome reports whether the stored document
// was used as-is, corrected, or replaced with defaults. Failing to persist
// defaults or corrections is logged but does not fail Begin.
func (s *Store) Begin() (Outcome, error) {
	s.log.Debug("Initializing configuration")

	if !s.backend.IsAvailable() {
		s.log.Warn("Card not available")
		return OutcomeNone, storage.NewError(storage.ErrTypeMountUnavailable, "begin", s.Path(), "card not mounted", nil)
	}

	if err := s.Load(); err != nil {
		if storage.IsUnavailable(err) {
			return OutcomeNone, err
		}

		s.log.Info("No usable configuration, writing defaults", zap.Error(err))
		s.SetDefaults()
		if err := s.Save(); err != nil {
			s.log.Warn("Could not persist defaults", zap.Error(err))
		}
		return OutcomeInitialized, nil
	}

	if s.Validate() {
		s.log.Debug("Configuration loaded")
		return OutcomeLoaded, nil
	}

	for _, fix := range s.lastFixes {
		s.log.Warn("Configuration field corrected",
			zap.Strings("fields", fix.Fields),
			zap.String("reason", fix.Reason),
		)
	}
	if err := s.Save(); err != nil {
		s.log.Warn("Could not persist corrected configuration", zap.Error(err))
	}
	return OutcomeRepaired, nil
}

// Load replaces the in-memory profile with the stored document. Each key
// is read on its own: missing keys and values of the wrong type take the
// compiled default. Load does not validate.
//
// Errors: MountUnavailable, NotFound, OpenFailure or ParseFailure. On
// error the in-memory profile is unchanged.
func (s *Store) Load() error {
	path := s.Path()
	if !s.backend.IsAvailable() {
		return storage.NewError(storage.ErrTypeMountUnavailable, "load", path, "card not mounted", nil)
	}

	text, err := s.backend.ReadAll(path)
	if err != nil {
		return err
	}

	doc, err := parseDocument(text)
	if err != nil {
		s.log.Warn("Configuration document unreadable", zap.String("path", path), zap.Error(err))
		return storage.NewError(storage.ErrTypeParse, "load", path, "", err)
	}

	switch s.kind {
	case KindPeer:
		var c PeerConfig
		doc.apply(c.fields())
		s.peer = c
	default:
		var c MainConfig
		doc.apply(c.fields())
		s.main = c
	}
	return nil
}

// Save writes the in-memory profile over the stored document.
// Errors: MountUnavailable or WriteFailure. Memory is never modified.
func (s *Store) Save() error {
	path := s.Path()
	if !s.backend.IsAvailable() {
		return storage.NewError(storage.ErrTypeMountUnavailable, "save", path, "card not mounted", nil)
	}

	data, err := s.Document()
	if err != nil {
		return storage.NewError(storage.ErrTypeWrite, "save", path, "encode failed", err)
	}

	if err := s.backend.WriteAll(path, string(data)); err != nil {
		s.log.Warn("Saving configuration failed", zap.Error(err))
		return err
	}

	s.log.Debug("Configuration saved", zap.String("path", path))
	return nil
}

// Validate repairs the in-memory profile and reports whether every field
// was already valid. The profile is valid afterwards either way.
func (s *Store) Validate() bool {
	if s.kind == KindPeer {
		s.lastFixes = ValidatePeer(&s.peer)
	} else {
		s.lastFixes = ValidateMain(&s.main)
	}
	return len(s.lastFixes) == 0
}

// Corrections returns what the most recent Validate changed
func (s *Store) Corrections() []Correction {
	return s.lastFixes
}

// SetDefaults resets the in-memory profile to compiled defaults
func (s *Store) SetDefaults() {
	if s.kind == KindPeer {
		s.peer = DefaultPeerConfig()
	} else {
		s.main = DefaultMainConfig()
	}
}

// Document returns the canonical document of the in-memory profile
func (s *Store) Document() ([]byte, error) {
	return encodeDocument(s.profile())
}

// Profile returns a copy of the active profile (MainConfig or PeerConfig)
func (s *Store) Profile() any {
	if s.kind == KindPeer {
		return s.peer
	}
	return s.main
}

func (s *Store) profile() any {
	if s.kind == KindPeer {
		return &s.peer
	}
	return &s.main
}

func (s *Store) fields() []field {
	if s.kind == KindPeer {
		return s.peer.fields()
	}
	return s.main.fields()
}

// FieldValue is one profile field rendered as text
type FieldValue struct {
	Key   string
	Value string
}

// Values returns every field of the active profile in document order
func (s *Store) Values() []FieldValue {
	fs := s.fields()
	values := make([]FieldValue, len(fs))
	for i, f := range fs {
		values[i] = FieldValue{Key: f.key, Value: formatValue(f)}
	}
	return values
}

// SetField assigns a value given as text to the field with the given
// document key. The value must parse as the field's type and must pass
// validation; otherwise a FieldInvalid error is returned and the profile
// is unchanged. SetField does not save.
func (s *Store) SetField(key, value string) error {
	// Validate against a copy; only the named field reaches the live profile
	mainCopy, peerCopy := s.main, s.peer

	var fs []field
	if s.kind == KindPeer {
		fs = peerCopy.fields()
	} else {
		fs = mainCopy.fields()
	}

	var target *field
	for i := range fs {
		if fs[i].key == key {
			target = &fs[i]
			break
		}
	}
	if target == nil {
		return storage.NewError(storage.ErrTypeFieldInvalid, "set", s.Path(),
			fmt.Sprintf("unknown %s key %q", s.kind, key), nil)
	}

	if err := setFromString(*target, value); err != nil {
		return storage.NewError(storage.ErrTypeFieldInvalid, "set", s.Path(), key, err)
	}

	var fixes []Correction
	if s.kind == KindPeer {
		fixes = ValidatePeer(&peerCopy)
	} else {
		fixes = ValidateMain(&mainCopy)
	}
	for _, fix := range fixes {
		for _, k := range fix.Fields {
			if k == key {
				return storage.NewError(storage.ErrTypeFieldInvalid, "set", s.Path(), key, errors.New(fix.Reason))
			}
		}
	}

	for _, f := range s.fields() {
		if f.key == key {
			_ = setFromString(f, value)
		}
	}
	s.log.Debug("Configuration field set", zap.String("key", key), zap.String("value", value))
	return nil
}
