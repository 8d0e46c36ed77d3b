package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/linguaquest/dialogue-engine/internal/services"
	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

var (
	// ErrTreeNotFound is returned by Open when the tree or its start node
	// cannot be resolved. The session stays closed.
	ErrTreeNotFound = errors.New("dialogue tree not found")

	// ErrNotActive is returned by commands that require an open session.
	ErrNotActive = errors.New("session is not active")

	// ErrEvaluationInFlight is returned when input arrives while a previous
	// evaluation has not finished. The new input is dropped, never
	// interleaved.
	ErrEvaluationInFlight = errors.New("evaluation already in flight")

	// ErrInvalidChoice is returned when the response id does not name a
	// choice response on the current node.
	ErrInvalidChoice = errors.New("invalid choice response")
)

const (
	// DefaultAutoCloseDelay is how long a session lingers on a terminal node
	// before closing itself.
	DefaultAutoCloseDelay = 3 * time.Second

	// hintThreshold is the failed-attempt count at which the hint becomes
	// visible; fallbackThreshold is where the conversation diverts to the
	// tree's not-understood node, if it has one.
	hintThreshold     = 2
	fallbackThreshold = 3
)

// Session is the conversation state machine for one UI surface. It is either
// Closed or Active on a node of one tree, tracks failed attempts and hint
// escalation, and delegates side effects to the executor. All methods are
// safe for concurrent use; a single logical writer is still assumed.
type Session struct {
	mu       sync.Mutex
	logger   *slog.Logger
	services *services.Bundle
	executor ActionExecutor

	autoCloseDelay time.Duration

	active         bool
	tree           *dialogue.Tree
	current        *dialogue.Node
	failedAttempts int
	hintVisible    bool
	lastInput      string
	lastEval       *speech.Evaluation
	dc             *speech.Context

	evaluating bool
	closeTimer *time.Timer

	// generation increments on every open and close so late-arriving
	// evaluation results and stale auto-close timers can detect that the
	// session they belong to is gone.
	generation uint64
}

// Option configures a Session.
type Option func(*Session)

// WithAutoCloseDelay overrides the terminal-node auto-close delay.
func WithAutoCloseDelay(d time.Duration) Option {
	return func(s *Session) { s.autoCloseDelay = d }
}

// WithSpeechContext seeds player-specific evaluation context (level, target
// language, known vocabulary).
func WithSpeechContext(dc *speech.Context) Option {
	return func(s *Session) { s.dc = dc }
}

// New creates a closed session over the given strategy bundle and executor.
func New(bundle *services.Bundle, executor ActionExecutor, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		logger:         logger,
		services:       bundle,
		executor:       executor,
		autoCloseDelay: DefaultAutoCloseDelay,
		dc:             &speech.Context{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open resolves the tree and its start node and activates the session. If
// either is missing the session stays closed and ErrTreeNotFound is
// returned; a lookup failure is wrapped. An already-open session is closed
// first.
func (s *Session) Open(ctx context.Context, treeID, npcID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.closeLocked()
	}

	tree, err := s.services.Provider.GetDialogueTree(ctx, treeID, s.dc)
	if err != nil {
		return fmt.Errorf("failed to resolve dialogue tree %q: %w", treeID, err)
	}
	if tree == nil {
		return fmt.Errorf("%w: %s", ErrTreeNotFound, treeID)
	}

	start := s.services.Provider.GetNode(tree, tree.StartNodeID)
	if start == nil {
		s.logger.Warn("Start node not found", "tree_id", treeID, "node_id", tree.StartNodeID)
		return fmt.Errorf("%w: %s has no start node", ErrTreeNotFound, treeID)
	}

	s.generation++
	s.active = true
	s.tree = tree
	s.current = start
	s.failedAttempts = 0
	s.hintVisible = false
	s.lastInput = ""
	s.lastEval = nil
	s.dc.NPCID = npcID
	s.dc.CurrentNodeID = start.ID
	s.dc.NodeHistory = nil

	s.logger.Debug("Session opened", "tree_id", treeID, "npc_id", npcID, "node_id", start.ID)

	if start.IsTerminal() {
		s.scheduleAutoCloseLocked()
	}
	return nil
}

// SubmitInput evaluates spoken or typed text against the current node's
// speak/write responses, array order breaking ties. The first matching
// response wins: its destination's action runs, attempts reset, and the
// session advances. With no match, attempts escalate toward the hint and the
// fallback node. Only one evaluation may be outstanding at a time, and a
// result arriving after Close is discarded without touching state.
func (s *Session) SubmitInput(ctx context.Context, text string) (*speech.Feedback, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	if s.evaluating {
		s.mu.Unlock()
		s.logger.Debug("Input ignored, evaluation in flight", "input", text)
		return nil, ErrEvaluationInFlight
	}

	s.evaluating = true
	gen := s.generation
	node := s.current
	bundle := s.services
	dcCopy := *s.dc
	dc := &dcCopy
	s.mu.Unlock()

	// Evaluate without holding the lock; the evaluator may be
	// network-backed on premium tiers.
	best := &speech.Evaluation{}
	var winner *dialogue.Response
	for i := range node.Responses {
		r := &node.Responses[i]
		if !r.AcceptsTranscript() {
			continue
		}

		eval, err := bundle.Evaluator.Evaluate(ctx, text, r.ExpectedSpeech, dc)
		if err != nil {
			// A transient evaluator failure must never crash the
			// conversation.
			s.logger.Warn("Evaluator failed, degrading to no match", "error", err, "response_id", r.ID)
			eval = &speech.Evaluation{}
		}

		if eval.Similarity > best.Similarity || (best.BestMatch == "" && eval.BestMatch != "") {
			best = eval
		}
		if eval.Matched {
			best = eval
			winner = r
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluating = false

	// The session may have been closed while the evaluation was in flight.
	if !s.active || s.generation != gen {
		s.logger.Debug("Discarding late evaluation result", "input", text)
		return nil, ErrNotActive
	}

	s.lastInput = text
	s.lastEval = best
	feedback := bundle.Feedback.GenerateFeedback(text, best, dc)

	if winner != nil {
		s.advanceLocked(ctx, winner)
		return feedback, nil
	}

	s.failedAttempts++
	s.hintVisible = s.failedAttempts >= hintThreshold

	if s.failedAttempts >= fallbackThreshold {
		if fb := s.tree.Fallback(); fb != nil && s.current.ID != dialogue.FallbackNodeID {
			s.logger.Debug("Diverting to fallback node", "failed_attempts", s.failedAttempts)
			s.moveLocked(fb)
		}
		// No fallback node: remain in place and keep counting attempts.
	}

	return feedback, nil
}

// SelectChoice transitions through a choice-modality response without any
// evaluation.
func (s *Session) SelectChoice(ctx context.Context, responseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNotActive
	}

	r := s.current.Response(responseID)
	if r == nil || r.RequiresType != dialogue.InputChoice {
		s.logger.Warn("Invalid choice selection", "response_id", responseID, "node_id", s.current.ID)
		return fmt.Errorf("%w: %s", ErrInvalidChoice, responseID)
	}

	s.advanceLocked(ctx, r)
	return nil
}

// Close deactivates the session and cancels any pending auto-close. It is
// idempotent and never fails.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.closeLocked()
	s.logger.Debug("Session closed")
}

// IsActive reports whether the session is open.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// CurrentNode returns the node the conversation is on, or nil when closed.
func (s *Session) CurrentNode() *dialogue.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	return s.current
}

// View is the presentation-boundary snapshot of a session.
type View struct {
	IsActive       bool               `json:"is_active"`
	TreeID         string             `json:"tree_id,omitempty"`
	CurrentNode    *dialogue.Node     `json:"current_node,omitempty"`
	FailedAttempts int                `json:"failed_attempts"`
	ShowHint       bool               `json:"show_hint"`
	LastInput      string             `json:"last_input,omitempty"`
	LastEvaluation *speech.Evaluation `json:"last_evaluation,omitempty"`
}

// View returns a snapshot for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		IsActive:       s.active,
		FailedAttempts: s.failedAttempts,
		ShowHint:       s.hintVisible,
		LastInput:      s.lastInput,
		LastEvaluation: s.lastEval,
	}
	if s.active {
		v.TreeID = s.tree.ID
		v.CurrentNode = s.current
	}
	return v
}

// advanceLocked executes the destination node's action, resets the attempt
// state, and moves there. Callers hold s.mu.
func (s *Session) advanceLocked(ctx context.Context, r *dialogue.Response) {
	dest := s.services.Provider.GetNode(s.tree, r.NextNodeID)
	if dest == nil {
		// Validation at load time makes this unreachable for library
		// content; guard anyway for providers that skip it.
		s.logger.Error("Destination node not found", "tree_id", s.tree.ID, "node_id", r.NextNodeID)
		return
	}

	if dest.Action != nil {
		if err := s.executor.Execute(ctx, dest.Action); err != nil {
			s.logger.Warn("Action execution failed", "action", dest.Action.String(), "error", err)
		}
	}

	s.failedAttempts = 0
	s.hintVisible = false
	s.moveLocked(dest)

	if dest.IsTerminal() {
		s.scheduleAutoCloseLocked()
	}
}

func (s *Session) moveLocked(dest *dialogue.Node) {
	s.dc.NodeHistory = append(s.dc.NodeHistory, s.current.ID)
	s.current = dest
	s.dc.CurrentNodeID = dest.ID
}

func (s *Session) scheduleAutoCloseLocked() {
	if s.closeTimer != nil {
		s.closeTimer.Stop()
	}

	gen := s.generation
	s.closeTimer = time.AfterFunc(s.autoCloseDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A manual Close (or a reopen) already bumped the generation; this
		// timer is stale then and must not act.
		if !s.active || s.generation != gen {
			return
		}
		s.closeLocked()
		s.logger.Debug("Session auto-closed", "tree_id", s.tree.ID)
	})
}

func (s *Session) closeLocked() {
	s.active = false
	s.generation++
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
}
