package repository

import (
	"context"
	"errors"
	"time"

	"blogeditor/internal/model"
)

// ErrNotFound is returned by every driver when no document matches the id,
// including ids that are malformed for that driver.
var ErrNotFound = errors.New("document not found")

// DocumentRepository is the document store. Implementations assign the id on Create
// and make each single-document operation atomic. No business rules live here.
type DocumentRepository interface {
	// Create inserts a new document and returns it with the store-assigned id.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindAll returns every document in store order.
	FindAll(ctx context.Context) ([]model.Document, error)

	// FindByID returns a document by its id.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// UpdateStatus sets the status and refreshes updated_at to at. The stored updated_at
	// is always strictly later than created_at.
	UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) (*model.Document, error)

	// Delete removes a document. It returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// MinUpdateStep is the smallest gap kept between created_at and a refreshed updated_at.
// Postgres timestamps have microsecond resolution.
const MinUpdateStep = time.Microsecond

// BumpAfter returns at, or created+MinUpdateStep when at is not strictly later than created.
func BumpAfter(created, at time.Time) time.Time {
	if at.After(created) {
		return at
	}
	return created.Add(MinUpdateStep)
}
