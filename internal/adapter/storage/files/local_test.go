package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestLocalStaging_Stage(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStaging(root, zerolog.Nop())
	s.now = fixedClock(time.UnixMilli(1700000000000))

	p, err := s.Stage("order-1", "aadhar", "scan.PDF", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "temp", "order-1", "order-1_aadhar_1700000000000.pdf"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestLocalStaging_RejectsTraversal(t *testing.T) {
	s := NewLocalStaging(t.TempDir(), zerolog.Nop())

	_, err := s.Stage("../etc", "aadhar", "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, err = s.Stage("order-1", "a/b", "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsafePath)

	assert.ErrorIs(t, s.Discard(".."), ErrUnsafePath)
}

func TestLocalStaging_Discard(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStaging(root, zerolog.Nop())

	_, err := s.Stage("order-2", "pan", "p.jpg", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, s.Discard("order-2"))
	_, err = os.Stat(filepath.Join(root, "temp", "order-2"))
	assert.True(t, os.IsNotExist(err))

	// Discarding twice is fine.
	assert.NoError(t, s.Discard("order-2"))
}

func TestLocalStaging_Sweep(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStaging(root, zerolog.Nop())

	for _, id := range []string{"stale", "live", "fresh"} {
		_, err := s.Stage(id, "f", "a.pdf", strings.NewReader("x"))
		require.NoError(t, err)
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "temp", "stale"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(root, "temp", "live"), old, old))

	n, err := s.Sweep(context.Background(), time.Hour, func(id string) bool { return id == "live" })
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(root, "temp", "stale"))
	assert.True(t, os.IsNotExist(err))
	assert.DirExists(t, filepath.Join(root, "temp", "live"))
	assert.DirExists(t, filepath.Join(root, "temp", "fresh"))
}

func TestLocalStaging_Sweep_NoTempDir(t *testing.T) {
	s := NewLocalStaging(t.TempDir(), zerolog.Nop())

	n, err := s.Sweep(context.Background(), time.Minute, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestLocalDocumentStore_Promote(t *testing.T) {
	root := t.TempDir()
	staging := NewLocalStaging(root, zerolog.Nop())
	store := NewLocalDocumentStore(root)

	tmp, err := staging.Stage("order-3", "form16", "f.pdf", strings.NewReader("form"))
	require.NoError(t, err)

	public, err := store.Promote(context.Background(), tmp, "itr")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/itr/"+filepath.Base(tmp), public)

	assert.NoFileExists(t, tmp)
	data, err := os.ReadFile(filepath.Join(root, "itr", filepath.Base(tmp)))
	require.NoError(t, err)
	assert.Equal(t, "form", string(data))
}

func TestLocalDocumentStore_Promote_SameMillisecondOrdersStayApart(t *testing.T) {
	root := t.TempDir()
	staging := NewLocalStaging(root, zerolog.Nop())
	staging.now = fixedClock(time.UnixMilli(1760000000000))
	store := NewLocalDocumentStore(root)
	ctx := context.Background()

	tmpA, err := staging.Stage("order-a", "aadharFile", "a.pdf", strings.NewReader("ALICE"))
	require.NoError(t, err)
	tmpB, err := staging.Stage("order-b", "aadharFile", "b.pdf", strings.NewReader("BOB"))
	require.NoError(t, err)

	publicA, err := store.Promote(ctx, tmpA, "itr")
	require.NoError(t, err)
	publicB, err := store.Promote(ctx, tmpB, "itr")
	require.NoError(t, err)
	assert.NotEqual(t, publicA, publicB)

	data, err := os.ReadFile(filepath.Join(root, "itr", filepath.Base(tmpA)))
	require.NoError(t, err)
	assert.Equal(t, "ALICE", string(data))

	// Cleaning up B's record must leave A's document in place.
	require.NoError(t, store.Remove(ctx, publicB))
	assert.FileExists(t, filepath.Join(root, "itr", filepath.Base(tmpA)))
}

func TestLocalDocumentStore_NeverOverwrites(t *testing.T) {
	root := t.TempDir()
	store := NewLocalDocumentStore(root)
	ctx := context.Background()

	_, err := store.Save(ctx, "pan", "photo_1.jpg", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "pan", "photo_1.jpg", strings.NewReader("second"))
	assert.ErrorIs(t, err, ErrDocumentExists)

	tmp := filepath.Join(t.TempDir(), "photo_1.jpg")
	require.NoError(t, os.WriteFile(tmp, []byte("third"), 0o600))
	_, err = store.Promote(ctx, tmp, "pan")
	assert.ErrorIs(t, err, ErrDocumentExists)
	assert.FileExists(t, tmp)

	data, err := os.ReadFile(filepath.Join(root, "pan", "photo_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalDocumentStore_SaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewLocalDocumentStore(root)
	ctx := context.Background()

	public, err := store.Save(ctx, "pan", "photo_1.jpg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/pan/photo_1.jpg", public)
	assert.FileExists(t, filepath.Join(root, "pan", "photo_1.jpg"))

	require.NoError(t, store.Remove(ctx, public))
	assert.NoFileExists(t, filepath.Join(root, "pan", "photo_1.jpg"))

	// Already gone.
	assert.NoError(t, store.Remove(ctx, public))
}

func TestLocalDocumentStore_RemoveRejectsForeignPaths(t *testing.T) {
	store := NewLocalDocumentStore(t.TempDir())
	ctx := context.Background()

	for _, p := range []string{"/etc/passwd", "/uploads/../secret", "/uploads/itr", "/uploads/itr/a/b"} {
		assert.ErrorIs(t, store.Remove(ctx, p), ErrUnsafePath, p)
	}
}
