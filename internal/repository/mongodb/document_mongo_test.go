package mongodb

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"blogeditor/internal/model"
	"blogeditor/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(oid primitive.ObjectID, status string, created, updated time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "title", Value: "t"},
		{Key: "content", Value: "c"},
		{Key: "tags", Value: "a, b ,c"},
		{Key: "status", Value: status},
		{Key: "created_at", Value: created},
		{Key: "updated_at", Value: updated},
	}
}

func TestDocumentMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc, err := repo.Create(ctx, &model.Document{
			Title:     "t",
			Tags:      model.ParseTags("a, b ,c"),
			Status:    model.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		})

		require.NoError(mt, err)
		assert.Len(mt, doc.ID, 24)
		assert.Equal(mt, "a, b ,c", doc.Tags.String())
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, record(oid, "draft", now, now)))

		doc, err := repo.FindByID(ctx, oid.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), doc.ID)
		assert.Equal(mt, model.StatusDraft, doc.Status)
		assert.Equal(mt, "a, b ,c", doc.Tags.String())
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)

		_, err := repo.FindByID(ctx, "zzz")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.ErrorIs(mt, repo.Delete(ctx, "zzz"), repository.ErrNotFound)
	})

	mt.Run("find all", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			record(primitive.NewObjectID(), "draft", now, now),
			record(primitive.NewObjectID(), "published", now, now),
		))

		docs, err := repo.FindAll(ctx)

		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, model.StatusPublished, docs[1].Status)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		oid := primitive.NewObjectID()
		later := now.Add(time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: record(oid, "published", now, later)}))

		doc, err := repo.UpdateStatus(ctx, oid.Hex(), model.StatusPublished, later)

		require.NoError(mt, err)
		assert.Equal(mt, model.StatusPublished, doc.Status)
		assert.True(mt, doc.UpdatedAt.After(doc.CreatedAt))
	})

	mt.Run("update status missing", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateStatus(ctx, primitive.NewObjectID().Hex(), model.StatusPublished, now)

		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewDocumentMongo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()), repository.ErrNotFound)
	})
}
