package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"blogeditor/internal/model"
)

const snapshotPrefix = "published"

// Snapshots exports published documents as JSON objects under published/<id>.json.
type Snapshots struct {
	store Storage
}

func NewSnapshots(store Storage) *Snapshots {
	return &Snapshots{store: store}
}

// SnapshotKey returns the object key for a document id.
func SnapshotKey(id string) string {
	return path.Join(snapshotPrefix, id+".json")
}

// Save writes the document's current state.
func (s *Snapshots) Save(ctx context.Context, doc *model.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.store.Put(ctx, SnapshotKey(doc.ID), bytes.NewReader(b), PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
		Metadata:    map[string]string{"status": string(doc.Status)},
	})
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Remove deletes the snapshot for id.
func (s *Snapshots) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, SnapshotKey(id)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
