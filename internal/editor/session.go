package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"blogeditor/internal/model"
)

var (
	ErrEmptyDocument = errors.New("title or content is required")
	ErrUnknownField  = errors.New("unknown field")
)

// Field is an editable part of the document.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// Lifecycle is the server side of the editor: the two creation paths.
type Lifecycle interface {
	CreateDraft(ctx context.Context, fields model.DocumentFields) (*model.Document, error)
	CreatePublished(ctx context.Context, fields model.DocumentFields) (*model.Document, error)
}

// EventKind classifies what the presentation layer is told.
type EventKind string

const (
	EventAutoSaved EventKind = "autosaved"
	EventSaved     EventKind = "saved"
	EventPublished EventKind = "published"
	EventNotice    EventKind = "notice"
	EventError     EventKind = "error"
)

// Event is a transient signal for the presentation layer.
type Event struct {
	Kind     EventKind
	Trigger  Trigger
	Document *model.Document
	Err      error
}

func (e Event) String() string {
	switch e.Kind {
	case EventAutoSaved:
		return fmt.Sprintf("draft autosaved (%s)", e.Trigger)
	case EventSaved:
		return "draft saved"
	case EventPublished:
		return "blog published"
	default:
		return e.Err.Error()
	}
}

// SessionConfig tunes a Session. Zero values use the defaults.
type SessionConfig struct {
	Debounce       time.Duration
	KeepAlive      time.Duration
	RequestTimeout time.Duration
	Clock          clockwork.Clock
	Logger         *zap.Logger
	// OnEvent receives every event. Calls are serialized.
	OnEvent func(Event)
}

// Session holds the in-progress document and turns scheduler triggers and user
// actions into Lifecycle calls. Publishing always creates a new document; drafts
// autosaved earlier in the session stay in the store as separate records.
type Session struct {
	api     Lifecycle
	sched   *Scheduler
	log     *zap.Logger
	timeout time.Duration
	onEvent func(Event)

	emitMu sync.Mutex

	mu     sync.Mutex
	fields model.DocumentFields
	rev    uint64
}

// NewSession starts an empty session. Call Close when done.
func NewSession(api Lifecycle, cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		api:     api,
		log:     log.With(zap.String("component", "editor")),
		timeout: cfg.RequestTimeout,
		onEvent: cfg.OnEvent,
	}
	s.sched = NewScheduler(cfg.Clock, cfg.Debounce, cfg.KeepAlive, s.autosave, s.log)
	return s
}

// SetField updates one field and re-arms autosave.
func (s *Session) SetField(name Field, value string) error {
	s.mu.Lock()
	switch name {
	case FieldTitle:
		s.fields.Title = value
	case FieldContent:
		s.fields.Content = value
	case FieldTags:
		s.fields.Tags = model.ParseTags(value)
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.rev++
	s.mu.Unlock()

	s.sched.Touch()
	return nil
}

// Fields returns a copy of the current values.
func (s *Session) Fields() model.DocumentFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) Focus() { s.sched.Focus() }

func (s *Session) Blur() { s.sched.Blur() }

// Close stops both timers. No save is issued after Close returns.
func (s *Session) Close() { s.sched.Close() }

// SaveDraft is the explicit save. On success automatic saves are suppressed until the next edit.
func (s *Session) SaveDraft(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	fields := s.snapshotLocked()
	rev := s.rev
	s.mu.Unlock()

	if fields.IsEmpty() {
		s.emit(Event{Kind: EventNotice, Err: ErrEmptyDocument})
		return nil, ErrEmptyDocument
	}

	doc, err := s.call(ctx, s.api.CreateDraft, fields)
	if err != nil {
		s.emit(Event{Kind: EventError, Err: fmt.Errorf("save draft: %w", err)})
		return nil, err
	}
	s.settle(rev, false)
	s.emit(Event{Kind: EventSaved, Document: doc})
	return doc, nil
}

// Publish creates a new published document from the current fields and, on success,
// resets the session for the next document. On failure the fields are kept.
func (s *Session) Publish(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	fields := s.snapshotLocked()
	rev := s.rev
	s.mu.Unlock()

	if fields.IsEmpty() {
		s.emit(Event{Kind: EventNotice, Err: ErrEmptyDocument})
		return nil, ErrEmptyDocument
	}

	doc, err := s.call(ctx, s.api.CreatePublished, fields)
	if err != nil {
		s.emit(Event{Kind: EventError, Err: fmt.Errorf("publish: %w", err)})
		return nil, err
	}

	s.settle(rev, true)
	s.emit(Event{Kind: EventPublished, Document: doc})
	return doc, nil
}

// settle runs after a successful explicit save. When nothing was typed since rev it
// suppresses autosave (and clears the fields if reset is set); otherwise the edit has
// already re-armed the debounce and both are left alone so the newer text gets saved.
func (s *Session) settle(rev uint64, reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rev != rev {
		return
	}
	if reset {
		s.fields = model.DocumentFields{}
	}
	// Under s.mu so an edit cannot land between the check and the suppression.
	s.sched.Suppress()
}

// autosave is the scheduler's fire function. Empty documents are never saved and
// failures are reported without stopping later attempts.
func (s *Session) autosave(ctx context.Context, trigger Trigger) {
	fields := s.Fields()
	if fields.IsEmpty() {
		return
	}
	doc, err := s.call(ctx, s.api.CreateDraft, fields)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("autosave_failed", zap.String("trigger", string(trigger)), zap.Error(err))
		s.emit(Event{Kind: EventError, Trigger: trigger, Err: fmt.Errorf("autosave: %w", err)})
		return
	}
	s.emit(Event{Kind: EventAutoSaved, Trigger: trigger, Document: doc})
}

func (s *Session) call(
	ctx context.Context,
	fn func(context.Context, model.DocumentFields) (*model.Document, error),
	fields model.DocumentFields,
) (*model.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx, fields)
}

func (s *Session) snapshotLocked() model.DocumentFields {
	f := s.fields
	f.Tags = append(model.Tags(nil), s.fields.Tags...)
	return f
}

func (s *Session) emit(ev Event) {
	if s.onEvent == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.onEvent(ev)
}
