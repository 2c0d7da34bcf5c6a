package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogeditor/internal/model"
	"blogeditor/internal/repository"
)

// DocumentMongo implements repository.DocumentRepository on a MongoDB collection.
// Ids are ObjectIDs exposed as hex strings. Mongo stores milliseconds, so timestamps
// are truncated before they are written.
type DocumentMongo struct {
	col *mongo.Collection
}

func NewDocumentMongo(col *mongo.Collection) *DocumentMongo {
	return &DocumentMongo{col: col}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

type documentRecord struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Tags      string             `bson:"tags"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (r documentRecord) toModel() *model.Document {
	return &model.Document{
		ID:        r.ID.Hex(),
		Title:     r.Title,
		Content:   r.Content,
		Tags:      model.ParseTags(r.Tags),
		Status:    model.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func (m *DocumentMongo) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	rec := documentRecord{
		ID:        primitive.NewObjectID(),
		Title:     doc.Title,
		Content:   doc.Content,
		Tags:      doc.Tags.String(),
		Status:    string(doc.Status),
		CreatedAt: doc.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt: doc.UpdatedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (m *DocumentMongo) FindAll(ctx context.Context) ([]model.Document, error) {
	cur, err := m.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Document{}
	for cur.Next(ctx) {
		var rec documentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, *rec.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *DocumentMongo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var rec documentRecord
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec.toModel(), nil
}

// UpdateStatus uses an update pipeline so the "strictly after created_at" rule is
// evaluated by the server against the stored value.
func (m *DocumentMongo) UpdateStatus(ctx context.Context, id string, status model.Status, at time.Time) (*model.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	minUpdated := bson.D{{Key: "$add", Value: bson.A{"$created_at", int64(1)}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(status)},
			{Key: "updated_at", Value: bson.D{{Key: "$max", Value: bson.A{at.UTC().Truncate(time.Millisecond), minUpdated}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec documentRecord
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (m *DocumentMongo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
