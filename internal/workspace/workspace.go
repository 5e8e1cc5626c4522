// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace edits the active sequence and saves edits back.
//
// Every edit lands in session state at once. If the sequence has an id,
// a save for the edited (step, field) pair is debounced; a burst of edits
// to one field sends only the last value, and edits to other fields keep
// their own timers. Saves that fail are logged and the local edit stays.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/debounce"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
)

// Defaults for Config.
const (
	DefaultSaveDelay   = 1000 * time.Millisecond
	DefaultSaveTimeout = 10 * time.Second
)

// Panel text.
const (
	Title          = "Sequence"
	SavingSuffix   = " (Saving...)"
	NotSavedSuffix = " (Not saved)"
	Placeholder    = "No sequence generated."
)

// ErrUnknownStep is returned for an edit to a step number not in the sequence.
var ErrUnknownStep = errors.New("unknown step")

// API is the part of the sync client the workspace uses.
type API interface {
	UpdateStep(ctx context.Context, u backend.StepUpdate) error
}

// Config holds workspace timing.
type Config struct {
	SaveDelay   time.Duration // debounce window per (step, field)
	SaveTimeout time.Duration // bound on each save request
}

// DefaultConfig returns the default workspace configuration.
func DefaultConfig() Config {
	return Config{SaveDelay: DefaultSaveDelay, SaveTimeout: DefaultSaveTimeout}
}

type saveKey struct {
	Step  int
	Field model.StepField
}

// Controller owns step edits for one session state.
type Controller struct {
	state  *session.State
	api    API
	cfg    Config
	logger *slog.Logger
	saves  *debounce.Keyed[saveKey, backend.StepUpdate]

	mu       sync.Mutex
	onChange func()
}

// New creates a Controller. Zero Config fields take their defaults.
func New(state *session.State, api API, cfg Config, logger *slog.Logger) *Controller {
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = DefaultSaveDelay
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{state: state, api: api, cfg: cfg, logger: logger}
	c.saves = debounce.NewKeyed(cfg.SaveDelay, c.save)
	return c
}

// OnChange registers fn to run whenever save status changes off the caller's
// goroutine. The TUI uses it to wake its event loop.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// EDITS
// =============================================================================

// Edit sets field of step stepNumber to value. The state changes at once.
// A save is scheduled only when the sequence has an id; otherwise the edit
// stays local and the panel shows it as not saved.
func (c *Controller) Edit(stepNumber int, field model.StepField, value string) error {
	if field != model.FieldTitle && field != model.FieldContent {
		return fmt.Errorf("edit step %d: unknown field %q", stepNumber, field)
	}

	id, err := c.state.EditStep(stepNumber, field, value)
	if errors.Is(err, model.ErrNoSuchStep) {
		return fmt.Errorf("%w: %d", ErrUnknownStep, stepNumber)
	}
	if err != nil {
		return err
	}
	if id == "" {
		c.logger.Debug("edit kept local, sequence has no id", "step", stepNumber, "field", field)
		return nil
	}

	c.saves.Call(saveKey{Step: stepNumber, Field: field}, backend.StepUpdate{
		SequenceID: id,
		StepNumber: stepNumber,
		Field:      field,
		Value:      value,
	})
	return nil
}

// save runs when a (step, field) debounce window closes.
func (c *Controller) save(key saveKey, u backend.StepUpdate) {
	epoch := c.state.BeginSave()
	c.notify()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SaveTimeout)
	err := c.api.UpdateStep(ctx, u)
	cancel()

	c.state.EndSave(epoch)
	if err != nil {
		c.logger.Error("step save failed",
			"sequence", u.SequenceID, "step", key.Step, "field", key.Field, "error", err)
	} else {
		c.logger.Debug("step saved", "sequence", u.SequenceID, "step", key.Step, "field", key.Field)
	}
	c.notify()
}

// Flush sends every pending save now and waits for them. Used on quit.
func (c *Controller) Flush() int {
	return c.saves.Flush()
}

// CancelPending drops saves that have not started.
func (c *Controller) CancelPending() int {
	return c.saves.Cancel()
}

// Pending returns how many (step, field) saves are waiting on their window.
func (c *Controller) Pending() int {
	return c.saves.Pending()
}

// =============================================================================
// VIEW STATE
// =============================================================================

// Steps returns the active steps.
func (c *Controller) Steps() []model.Step {
	return c.state.Sequence().Steps
}

// PanelTitle is the sequence panel heading for a state snapshot.
func PanelTitle(snap session.Snapshot) string {
	switch {
	case snap.Saving:
		return Title + SavingSuffix
	case snap.Unsynced && !snap.Sequence.IsEmpty():
		return Title + NotSavedSuffix
	default:
		return Title
	}
}

// PanelTitle is the sequence panel heading for the current state.
func (c *Controller) PanelTitle() string {
	return PanelTitle(c.state.Snapshot())
}
