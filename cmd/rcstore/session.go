package main

import (
	"go.uber.org/zap"

	"github.com/muurk/rcstore/internal/deviceconfig"
	"github.com/muurk/rcstore/internal/eventlog"
	"github.com/muurk/rcstore/internal/logging"
	"github.com/muurk/rcstore/internal/storage"
	"github.com/muurk/rcstore/internal/ui"
)

// Tips shown whenever the card cannot be mounted
var cardTips = []string{
	"Check --card points at the card mount point or image directory",
	"Check the card is inserted and mounted by the host",
	"Save a default with: rcstore settings save --card <dir>",
}

// session wires the three storage services to one card
type session struct {
	backend *storage.Backend
	store   *deviceconfig.Store
	router  *eventlog.Router
	log     *zap.Logger
}

// newSession builds an unmounted session from the effective settings
func newSession() *session {
	logger := logging.GetLogger()
	driver := &storage.DirDriver{
		Root:     settings.Card.Root,
		Capacity: settings.CapacityBytes(),
	}
	backend := storage.NewBackend(driver, logger)

	return &session{
		backend: backend,
		store:   deviceconfig.NewStore(backend, settings.Kind(), deviceconfig.Options{Logger: logger}),
		router:  eventlog.New(backend, eventlog.Options{Logger: logger}),
		log:     logger,
	}
}

// openSession builds a session and mounts the card
func openSession() (*session, error) {
	s := newSession()
	if err := s.backend.Mount(); err != nil {
		return nil, err
	}
	return s, nil
}

// close unmounts the card. A failure is only logged since every write has
// already completed.
func (s *session) close() {
	if err := s.backend.Unmount(); err != nil {
		s.log.Warn("Unmount failed", zap.Error(err))
	}
}

// loadProfile reads the stored profile without writing anything back.
// It reports false when no usable document exists, leaving defaults in
// memory.
func (s *session) loadProfile() (bool, error) {
	err := s.store.Load()
	switch {
	case err == nil:
		return true, nil
	case storage.IsUnavailable(err):
		return false, err
	default:
		s.log.Debug("Stored profile unusable", zap.Error(err))
		return false, nil
	}
}

// cardParams returns the header parameters common to every command
func cardParams() map[string]string {
	return map[string]string{
		"Card":    settings.Card.Root,
		"Profile": settings.Card.Profile,
	}
}

// runStep reports a step as running, runs fn and reports the outcome
func runStep(onStep ui.StepCallback, n int, fn func() (string, error)) error {
	onStep(n, ui.StepRunning, "")
	msg, err := fn()
	if err != nil {
		if msg == "" {
			msg = err.Error()
		}
		onStep(n, ui.StepFailed, msg)
		return err
	}
	onStep(n, ui.StepComplete, msg)
	return nil
}
