package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"blogeditor/internal/events"
	"blogeditor/internal/logger"
	"blogeditor/internal/metrics"
	"blogeditor/internal/model"
	"blogeditor/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("blog not found")
	ErrValidation = errors.New("validation failed")
)

const tracerName = "blogeditor/internal/service"

// LifecycleService is the only place document status transitions are decided.
type LifecycleService interface {
	// CreateDraft stores a new document in the draft state.
	CreateDraft(ctx context.Context, fields model.DocumentFields) (*model.Document, error)

	// CreatePublished stores a new document directly in the published state.
	// Title or content must be non-empty.
	CreatePublished(ctx context.Context, fields model.DocumentFields) (*model.Document, error)

	// Promote moves an existing document to published and refreshes updated_at.
	// Promoting an already published document is treated the same way.
	Promote(ctx context.Context, id string) (*model.Document, error)

	// Remove deletes a document permanently.
	Remove(ctx context.Context, id string) error

	// List returns every document in store order.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a single document by id.
	Get(ctx context.Context, id string) (*model.Document, error)
}

// SnapshotStore exports published documents. Optional.
type SnapshotStore interface {
	Save(ctx context.Context, doc *model.Document) error
	Remove(ctx context.Context, id string) error
}

// Option configures a lifecycleService.
type Option func(*lifecycleService)

func WithEvents(p events.Publisher) Option {
	return func(s *lifecycleService) { s.events = p }
}

func WithSnapshots(store SnapshotStore) Option {
	return func(s *lifecycleService) { s.snapshots = store }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *lifecycleService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *lifecycleService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type lifecycleService struct {
	repo      repository.DocumentRepository
	events    events.Publisher
	snapshots SnapshotStore
	log       *zap.Logger
	clock     clockwork.Clock
	tracer    trace.Tracer
}

// NewLifecycleService constructs a LifecycleService over repo.
func NewLifecycleService(repo repository.DocumentRepository, opts ...Option) LifecycleService {
	s := &lifecycleService{
		repo:   repo,
		log:    zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *lifecycleService) CreateDraft(ctx context.Context, fields model.DocumentFields) (doc *model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.CreateDraft")
	defer func() { s.finish(ctx, span, "create_draft", err) }()

	doc, err = s.create(ctx, fields, model.StatusDraft)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("blog.id", doc.ID))
	s.publish(ctx, model.EventDraftCreated, doc)
	return doc, nil
}

func (s *lifecycleService) CreatePublished(ctx context.Context, fields model.DocumentFields) (doc *model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.CreatePublished")
	defer func() { s.finish(ctx, span, "create_published", err) }()

	if err = validatePublish(fields); err != nil {
		return nil, err
	}
	doc, err = s.create(ctx, fields, model.StatusPublished)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("blog.id", doc.ID))
	s.snapshot(ctx, doc)
	s.publish(ctx, model.EventPublishedCreated, doc)
	return doc, nil
}

func (s *lifecycleService) Promote(ctx context.Context, id string) (doc *model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Promote", trace.WithAttributes(attribute.String("blog.id", id)))
	defer func() { s.finish(ctx, span, "promote", err) }()

	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err = s.repo.UpdateStatus(ctx, id, model.StatusPublished, s.now())
	if err != nil {
		return nil, storeError("promote", err)
	}
	s.snapshot(ctx, doc)
	s.publish(ctx, model.EventPromoted, doc)
	return doc, nil
}

func (s *lifecycleService) Remove(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Remove", trace.WithAttributes(attribute.String("blog.id", id)))
	defer func() { s.finish(ctx, span, "remove", err) }()

	if id == "" {
		return ErrIDRequired
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return storeError("remove", err)
	}
	if s.snapshots != nil {
		if serr := s.snapshots.Remove(ctx, id); serr != nil {
			logger.FromContext(ctx, s.log).Warn("snapshot_remove_failed", zap.String("blog_id", id), zap.Error(serr))
		}
	}
	s.publish(ctx, model.EventRemoved, &model.Document{ID: id})
	return nil
}

func (s *lifecycleService) List(ctx context.Context) (docs []model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.List")
	defer func() { s.finish(ctx, span, "list", err) }()

	docs, err = s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	span.SetAttributes(attribute.Int("blog.count", len(docs)))
	return docs, nil
}

func (s *lifecycleService) Get(ctx context.Context, id string) (doc *model.Document, err error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Get", trace.WithAttributes(attribute.String("blog.id", id)))
	defer func() { s.finish(ctx, span, "get", err) }()

	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get", err)
	}
	return doc, nil
}

func (s *lifecycleService) create(ctx context.Context, fields model.DocumentFields, status model.Status) (*model.Document, error) {
	now := s.now()
	doc := &model.Document{
		Title:     fields.Title,
		Content:   fields.Content,
		Tags:      fields.Tags,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", status, err)
	}
	return stored, nil
}

func (s *lifecycleService) now() time.Time {
	return s.clock.Now().UTC()
}

// snapshot and publish are side channels: failures are logged, never returned.
func (s *lifecycleService) snapshot(ctx context.Context, doc *model.Document) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, doc); err != nil {
		logger.FromContext(ctx, s.log).Warn("snapshot_save_failed", zap.String("blog_id", doc.ID), zap.Error(err))
	}
}

func (s *lifecycleService) publish(ctx context.Context, typ model.EventType, doc *model.Document) {
	if s.events == nil {
		return
	}
	ev := model.LifecycleEvent{
		Type:       typ,
		DocumentID: doc.ID,
		Status:     doc.Status,
		Timestamp:  s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx, s.log).Warn("event_publish_failed",
			zap.String("event", string(typ)),
			zap.String("blog_id", doc.ID),
			zap.Error(err),
		)
	}
}

func (s *lifecycleService) finish(ctx context.Context, span trace.Span, op string, err error) {
	defer span.End()
	result := resultOf(err)
	metrics.LifecycleOperations.WithLabelValues(op, result).Inc()
	if err == nil {
		return
	}
	if result == metrics.ResultError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.FromContext(ctx, s.log).Error("lifecycle_failed", zap.String("operation", op), zap.Error(err))
		return
	}
	span.SetAttributes(attribute.String("blog.result", result))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrIDRequired):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

// storeError maps the repository's not-found to ErrNotFound and wraps everything else.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validatePublish(f model.DocumentFields) error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.When(f.Content == "", validation.Required.Error("title or content is required"))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
