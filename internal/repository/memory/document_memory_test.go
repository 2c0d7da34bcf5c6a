package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"blogeditor/internal/model"
	"blogeditor/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(title string, at time.Time) *model.Document {
	return &model.Document{
		Title:     title,
		Tags:      model.ParseTags("a, b ,c"),
		Status:    model.StatusDraft,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestDocumentMemory_CreateAssignsIDs(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()
	now := time.Now()

	in := newDoc("one", now)
	a, err := repo.Create(ctx, in)
	require.NoError(t, err)
	b, err := repo.Create(ctx, newDoc("two", now))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, in.ID, "input must not be mutated")

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Title)
	assert.Equal(t, "two", all[1].Title)
	assert.Equal(t, "a, b ,c", all[0].Tags.String())
}

func TestDocumentMemory_UpdateStatusBumpsTimestamp(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()
	now := time.Now()

	d, err := repo.Create(ctx, newDoc("x", now))
	require.NoError(t, err)

	got, err := repo.UpdateStatus(ctx, d.ID, model.StatusPublished, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	later := now.Add(time.Hour)
	got, err = repo.UpdateStatus(ctx, d.ID, model.StatusPublished, later)
	require.NoError(t, err)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestDocumentMemory_DeleteIsTerminal(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	d, err := repo.Create(ctx, newDoc("x", time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, d.ID))

	_, err = repo.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.UpdateStatus(ctx, d.ID, model.StatusPublished, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, d.ID), repository.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDocumentMemory_PromoteRacingDelete(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	d, err := repo.Create(ctx, newDoc("x", time.Now()))
	require.NoError(t, err)

	var (
		wg         sync.WaitGroup
		promoteErr error
		deleteErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, promoteErr = repo.UpdateStatus(ctx, d.ID, model.StatusPublished, time.Now())
	}()
	go func() {
		defer wg.Done()
		deleteErr = repo.Delete(ctx, d.ID)
	}()
	wg.Wait()

	require.NoError(t, deleteErr)
	if promoteErr != nil {
		assert.ErrorIs(t, promoteErr, repository.ErrNotFound)
	}
	_, err = repo.FindByID(ctx, d.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentMemory_ReadsDoNotShareTags(t *testing.T) {
	repo := NewDocumentMemory()
	ctx := context.Background()

	created, err := repo.Create(ctx, newDoc("one", time.Now()))
	require.NoError(t, err)
	created.Tags[0] = "created"

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	got.Tags[0] = "found"

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	all[0].Tags[0] = "listed"

	promoted, err := repo.UpdateStatus(ctx, created.ID, model.StatusPublished, time.Now())
	require.NoError(t, err)
	promoted.Tags[0] = "promoted"

	again, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a, b ,c", again.Tags.String())
}
