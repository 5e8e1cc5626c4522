// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation runs the chat send cycle.
//
// A cycle is split into steps so an event loop can run the network calls off
// its own thread and apply results when they arrive:
//
//	cy, err := c.Submit(text)           // echo the user message
//	intent := c.Classify(ctx, cy)       // network, absorbs failure
//	c.AwaitReply(cy, intent)            // show the transient status
//	reply, err := c.Fetch(ctx, cy)      // network
//	out := c.Resolve(cy, reply, err)    // append reply, adopt sequence
//
// Send runs all of them in order on the calling goroutine.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
)

// FallbackReply is appended in place of a reply that could not be fetched.
const FallbackReply = "Oops, something went wrong."

// Reasons Submit ignores input. None of them is shown to the user.
var (
	ErrEmptyInput = errors.New("empty message")
	ErrNoIdentity = errors.New("no signed-in user")
	ErrBusy       = errors.New("a reply is still pending")
)

// Phase is where the latest cycle stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseClassifying
	PhaseAwaitingReply
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseClassifying:
		return "classifying"
	case PhaseAwaitingReply:
		return "awaiting_reply"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// API is the part of the sync client the controller uses.
type API interface {
	ClassifyIntent(ctx context.Context, text string) model.Intent
	SendMessage(ctx context.Context, userID, text string) (*backend.ChatReply, error)
}

// Config holds controller policy.
type Config struct {
	// AllowOverlap lets the user submit while an earlier reply is pending.
	// When false such submits are ignored.
	AllowOverlap bool
}

// Cycle is one send cycle. Seq increases with every Submit.
type Cycle struct {
	Seq    uint64
	Epoch  uint64
	UserID string
	Text   string
	Intent model.Intent
}

// Outcome describes how Resolve changed the state.
type Outcome struct {
	Cycle  *Cycle
	Reply  string
	Failed bool

	// SequenceApplied is false when a newer cycle was issued before this one
	// resolved; its reply is still appended but its sequence is not adopted.
	SequenceApplied bool

	// Dropped is true when the session ended while the cycle was in flight.
	Dropped bool
}

// Controller owns the send protocol for one session state.
type Controller struct {
	mu          sync.Mutex
	state       *session.State
	api         API
	cfg         Config
	logger      *slog.Logger
	issued      uint64 // Seq of the latest Submit
	outstanding int
	phase       Phase
}

// New creates a Controller. A nil logger uses slog.Default().
func New(state *session.State, api API, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{state: state, api: api, cfg: cfg, logger: logger}
}

// Phase returns the phase of the latest cycle.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether any cycle is still waiting on the network.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outstanding > 0
}

// Submit starts a cycle: it appends the user's message and moves to
// Classifying. Blank text, a missing identity, or a pending reply under the
// no-overlap policy leave everything untouched and return an error.
func (c *Controller) Submit(text string) (*Cycle, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	userID := c.state.UserID()
	if userID == "" {
		return nil, ErrNoIdentity
	}

	c.mu.Lock()
	if c.outstanding > 0 && !c.cfg.AllowOverlap {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.issued++
	c.outstanding++
	c.phase = PhaseClassifying
	cy := &Cycle{Seq: c.issued, Epoch: c.state.Epoch(), UserID: userID, Text: text}
	c.mu.Unlock()

	c.state.Append(model.NewUserMessage(text))
	c.logger.Debug("send cycle started", "seq", cy.Seq)
	return cy, nil
}

// Classify asks for the cycle's intent. Failures yield the default intent.
func (c *Controller) Classify(ctx context.Context, cy *Cycle) model.Intent {
	return c.api.ClassifyIntent(ctx, cy.Text)
}

// AwaitReply records the intent, shows its status text and moves to
// AwaitingReply. The reply request must not be issued before this.
func (c *Controller) AwaitReply(cy *Cycle, intent model.Intent) {
	cy.Intent = intent

	c.mu.Lock()
	latest := cy.Seq == c.issued
	if latest {
		c.phase = PhaseAwaitingReply
	}
	c.mu.Unlock()

	// The status belongs to the latest cycle.
	if latest && c.state.Epoch() == cy.Epoch {
		c.state.SetStatus(intent.StatusText())
	}
}

// Fetch sends the cycle's message and returns the reply.
func (c *Controller) Fetch(ctx context.Context, cy *Cycle) (*backend.ChatReply, error) {
	return c.api.SendMessage(ctx, cy.UserID, cy.Text)
}

// Resolve applies the result of Fetch. The status is cleared when cy is the
// latest cycle, and exactly one assistant message is appended: the reply, or FallbackReply on error. On
// success the reply's sequence replaces the active one, unless a newer cycle
// has been issued meanwhile. On error the sequence is left alone.
func (c *Controller) Resolve(cy *Cycle, reply *backend.ChatReply, err error) Outcome {
	c.mu.Lock()
	if c.outstanding > 0 {
		c.outstanding--
	}
	latest := cy.Seq == c.issued
	c.mu.Unlock()

	out := Outcome{Cycle: cy}
	if err == nil && reply == nil {
		err = errors.New("empty reply")
	}

	if c.state.Epoch() != cy.Epoch {
		c.setPhase(cy, PhaseIdle)
		out.Dropped = true
		c.logger.Debug("dropping reply for ended session", "seq", cy.Seq)
		return out
	}

	if latest {
		c.state.ClearStatus()
	}

	if err != nil {
		c.setPhase(cy, PhaseFailed)
		c.logger.Error("chat request failed", "seq", cy.Seq, "error", err)
		out.Failed = true
		out.Reply = FallbackReply
		c.state.AppendIf(cy.Epoch, model.NewAssistantMessage(FallbackReply))
		c.setPhase(cy, PhaseIdle)
		return out
	}

	out.Reply = reply.Reply
	c.state.AppendIf(cy.Epoch, model.NewAssistantMessage(reply.Reply))
	if latest {
		c.state.SetSequence(reply.ActiveSequence())
		out.SequenceApplied = true
	} else {
		c.logger.Info("skipping sequence from superseded reply", "seq", cy.Seq)
	}
	c.setPhase(cy, PhaseIdle)
	return out
}

func (c *Controller) setPhase(cy *Cycle, p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cy.Seq == c.issued {
		c.phase = p
	}
}

// Send runs a whole cycle on the calling goroutine.
func (c *Controller) Send(ctx context.Context, text string) (Outcome, error) {
	cy, err := c.Submit(text)
	if err != nil {
		return Outcome{}, err
	}
	c.AwaitReply(cy, c.Classify(ctx, cy))
	reply, err := c.Fetch(ctx, cy)
	return c.Resolve(cy, reply, err), nil
}
