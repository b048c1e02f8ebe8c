package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Policy decides what happens when runs overlap on one session.
type Policy string

const (
	// PolicyLastWriteWins lets overlapping runs proceed; the last to finish
	// overwrites the document.
	PolicyLastWriteWins Policy = "last-write-wins"
	// PolicySerialize rejects a run with ErrBusy while another is in flight.
	PolicySerialize Policy = "serialize"
)

// EventKind classifies a session event.
type EventKind string

const (
	EventLoading   EventKind = "loading"
	EventIdle      EventKind = "idle"
	EventPublished EventKind = "published"
	EventError     EventKind = "error"
	EventNotice    EventKind = "notice"
)

// Event is what display, preview and status collaborators observe.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Op        Op        `json:"op,omitempty"`
	Message   string    `json:"message,omitempty"`
	Document  *Document `json:"document,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier receives session events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// RectifiedNotice is the notice published after a successful rectification.
const RectifiedNotice = "Code improved based on your feedback!"

// Session 持有一个文档的多轮生成/修订上下文。
type Session struct {
	ID string

	agent    *Agent
	cell     DocumentCell
	notifier Notifier
	policy   Policy
	inflight atomic.Bool

	mu      sync.Mutex
	history []Turn
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithNotifier routes session events to n.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) { s.notifier = n }
}

// WithPolicy sets the overlap policy.
func WithPolicy(p Policy) SessionOption {
	return func(s *Session) { s.policy = p }
}

// NewSession 创建 session，尚未生成文档。
func NewSession(id string, agent *Agent, opts ...SessionOption) *Session {
	s := &Session{
		ID:     id,
		agent:  agent,
		policy: PolicyLastWriteWins,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns the current accepted document and its version.
func (s *Session) Document() (Document, uint64) {
	return s.cell.Load()
}

// History returns a copy of the accepted turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Generate runs the generation cycle for description. An empty description
// fails with ErrEmptyInput before any backend call.
func (s *Session) Generate(ctx context.Context, description string) (Document, error) {
	spec := ExtractSpec(description)
	if spec.Description == "" {
		return Document{}, s.fail(OpGenerate, ErrEmptyInput)
	}
	return s.run(ctx, OpGenerate, spec.Description, func(ctx context.Context, _ Document) (string, error) {
		return s.agent.Generate(ctx, spec)
	})
}

// Rectify runs the human-feedback cycle against the current document.
func (s *Session) Rectify(ctx context.Context, feedback string) (Document, error) {
	if cur, _ := s.cell.Load(); cur.Empty() {
		return Document{}, s.fail(OpRectify, ErrNoDocument)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return Document{}, s.fail(OpRectify, ErrEmptyFeedback)
	}
	return s.run(ctx, OpRectify, feedback, func(ctx context.Context, cur Document) (string, error) {
		return s.agent.Rectify(ctx, cur.HTML, feedback)
	})
}

// Restore accepts an existing document, for example a saved file or an
// earlier version, as the current one. It must pass the validator. No turn is
// recorded.
func (s *Session) Restore(code string) (Document, error) {
	if s.policy == PolicySerialize {
		if !s.inflight.CompareAndSwap(false, true) {
			return Document{}, s.fail(OpRestore, ErrBusy)
		}
		defer s.inflight.Store(false)
	}
	code, err := Validate(strings.TrimSpace(code))
	if err != nil {
		return Document{}, s.fail(OpRestore, err)
	}
	doc := s.cell.Store(Document{
		HTML:      code,
		Title:     ExtractTitle(code),
		Op:        OpRestore,
		CreatedAt: time.Now(),
	})
	published := doc
	s.emit(Event{Kind: EventPublished, Op: OpRestore, Document: &published})
	return doc, nil
}

func (s *Session) run(ctx context.Context, op Op, input string, call func(context.Context, Document) (string, error)) (Document, error) {
	if s.policy == PolicySerialize {
		if !s.inflight.CompareAndSwap(false, true) {
			return Document{}, s.fail(op, ErrBusy)
		}
		defer s.inflight.Store(false)
	}

	s.emit(Event{Kind: EventLoading, Op: op})
	defer s.emit(Event{Kind: EventIdle, Op: op})

	cur, version := s.cell.Load()
	html, err := call(ctx, cur)
	if err != nil {
		return Document{}, s.fail(op, err)
	}

	next := Document{
		HTML:      html,
		Title:     ExtractTitle(html),
		Op:        op,
		CreatedAt: time.Now(),
	}
	if s.policy == PolicySerialize {
		stored, ok := s.cell.CompareAndSwap(version, next)
		if !ok {
			return Document{}, s.fail(op, fmt.Errorf("%w: document changed during the run", ErrBusy))
		}
		next = stored
	} else {
		next = s.cell.Store(next)
	}

	s.mu.Lock()
	s.history = append(s.history, Turn{
		Op:        op,
		Input:     input,
		Version:   next.Version,
		Title:     next.Title,
		CreatedAt: next.CreatedAt,
	})
	s.mu.Unlock()

	published := next
	s.emit(Event{Kind: EventPublished, Op: op, Document: &published})
	if op == OpRectify {
		s.emit(Event{Kind: EventNotice, Op: op, Message: RectifiedNotice})
	}
	return next, nil
}

func (s *Session) fail(op Op, err error) error {
	var re *RunError
	if !errors.As(err, &re) {
		err = &RunError{Op: op, Err: err}
	}
	s.emit(Event{Kind: EventError, Op: op, Message: err.Error()})
	return err
}

func (s *Session) emit(e Event) {
	if s.notifier == nil {
		return
	}
	e.SessionID = s.ID
	e.At = time.Now()
	s.notifier.Notify(e)
}
