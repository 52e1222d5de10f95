package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// Archiver writes JSON snapshots of the tournament after each stage change.
type Archiver interface {
	Archive(ctx context.Context, kind string, at time.Time, payload interface{}) (*UploadResult, error)
}

type objectArchiver struct {
	store  ObjectStore
	prefix string
	newID  func() uuid.UUID
}

func NewArchiver(store ObjectStore, prefix string) Archiver {
	return &objectArchiver{store: store, prefix: prefix, newID: uuid.New}
}

// ArchiveKey builds "<prefix>/<yyyy-mm-dd>/<kind>-<unix>-<id>.json".
func ArchiveKey(prefix, kind string, at time.Time, id uuid.UUID) string {
	name := fmt.Sprintf("%s-%d-%s.json", kind, at.Unix(), id)
	return path.Join(prefix, at.UTC().Format("2006-01-02"), name)
}

func (a *objectArchiver) Archive(ctx context.Context, kind string, at time.Time, payload interface{}) (*UploadResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}
	key := ArchiveKey(a.prefix, kind, at, a.newID())
	return a.store.Upload(ctx, key, "application/json", bytes.NewReader(body))
}

type nopArchiver struct{}

// NopArchiver discards snapshots; used when no object store is configured.
func NopArchiver() Archiver { return nopArchiver{} }

func (nopArchiver) Archive(context.Context, string, time.Time, interface{}) (*UploadResult, error) {
	return nil, nil
}
