package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"driftgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	return s
}

func TestReadAll_MissingFile(t *testing.T) {
	s := newTestStore(t)

	posts := s.ReadAll()
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestReadAll_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	assert.Empty(t, s.ReadAll())
}

func TestReadAll_WrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"posts": []}`), 0o600))

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	assert.Empty(t, s.ReadAll())
}

func TestAppend_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	post := models.Post{
		ID:        "abc-123",
		CreatedAt: 1700000000000,
		Prompt:    "a cat on a rooftop at sunset",
		Caption:   "Golden hour supervisor. #catsofinstagram",
		ImageURL:  "/uploads/1700000000000_deadbeef.png",
		User:      models.DefaultAuthor,
		Stats:     models.Stats{Likes: 42, Comments: 7},
	}
	require.NoError(t, s.Append(post))

	posts := s.ReadAll()
	require.Len(t, posts, 1)
	assert.Equal(t, post, posts[0])
}

func TestAppend_PreservesExistingPosts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append(models.Post{ID: "one", CreatedAt: 1}))
	require.NoError(t, s.Append(models.Post{ID: "two", CreatedAt: 2}))
	require.NoError(t, s.Append(models.Post{ID: "three", CreatedAt: 3}))

	assert.Equal(t, 3, s.Count())
}

func TestReadAllSorted_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	// Insert out of order; the store file itself is unordered.
	require.NoError(t, s.Append(models.Post{ID: "middle", CreatedAt: 200}))
	require.NoError(t, s.Append(models.Post{ID: "newest", CreatedAt: 300}))
	require.NoError(t, s.Append(models.Post{ID: "oldest", CreatedAt: 100}))

	posts := s.ReadAllSorted()
	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0].ID)
	assert.Equal(t, "middle", posts[1].ID)
	assert.Equal(t, "oldest", posts[2].ID)
}

func TestAppend_FileIsValidJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.Append(models.Post{ID: "one"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 1)
}
