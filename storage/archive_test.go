package storage

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryStore) Upload(_ context.Context, key, contentType string, r io.Reader) (*UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[key] = b
	m.contentTypes[key] = contentType
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GetPublicURL(key string) string {
	return publicURL("https://cdn.example.com/archive", key)
}

func TestArchiveKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	key := ArchiveKey("snapshots", "stage_advanced", at, id)
	assert.Equal(t, "snapshots/2024-05-17/stage_advanced-1715940000-6ba7b810-9dad-11d1-80b4-00c04fd430c8.json", key)
}

func TestArchiverUploadsJSON(t *testing.T) {
	store := newMemoryStore()
	a := NewArchiver(store, "snapshots")

	at := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	res, err := a.Archive(context.Background(), "stage_reset", at, map[string]string{"phase": "group_stage"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Contains(t, res.Key, "snapshots/2024-05-17/stage_reset-")
	assert.Equal(t, "https://cdn.example.com/archive/"+res.Key, res.Location)
	assert.Equal(t, "application/json", store.contentTypes[res.Key])

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(store.objects[res.Key], &decoded))
	assert.Equal(t, "group_stage", decoded["phase"])
}

func TestNopArchiver(t *testing.T) {
	res, err := NopArchiver().Archive(context.Background(), "x", time.Now(), nil)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "", publicURL("", "a.json"))
	assert.Equal(t, "https://cdn.example.com/a/b.json", publicURL("https://cdn.example.com", "/a/b.json"))
	assert.Equal(t, "https://cdn.example.com/base/a.json", publicURL("https://cdn.example.com/base", "a.json"))
}
