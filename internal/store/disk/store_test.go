package disk

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

const recordID = "0b7f1f0e-6f4c-4b7e-9a51-3c1c6b0f2d11"

func newStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s := New(fs, "redstone")
	require.NoError(t, s.EnsureLayout())
	return s, fs
}

func TestEnsureLayout(t *testing.T) {
	s, fs := newStore(t)

	for _, dir := range []string{"redstone/endpoints", "redstone/waypoints"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
	// idempotent
	require.NoError(t, s.EnsureLayout())
}

func TestEnsureLayout_ReadOnly(t *testing.T) {
	s := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "redstone")
	assert.Error(t, s.EnsureLayout())
}

func TestWriteReadReplace(t *testing.T) {
	s, fs := newStore(t)

	require.NoError(t, s.Write(domain.KindEndpoint, recordID, "first"))
	got, err := s.Read(domain.KindEndpoint, recordID)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	require.NoError(t, s.Write(domain.KindEndpoint, recordID, "second"))
	got, err = s.Read(domain.KindEndpoint, recordID)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	// no temp files left behind
	infos, err := afero.ReadDir(fs, filepath.Join("redstone", "endpoints"))
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, recordID, infos[0].Name())
}

func TestWrite_ReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, New(base, "redstone").EnsureLayout())
	s := New(afero.NewReadOnlyFs(base), "redstone")

	err := s.Write(domain.KindWaypoint, recordID, "x")
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestWrite_RejectsPathLikeIDs(t *testing.T) {
	s, _ := newStore(t)

	for _, id := range []string{"", ".", "..", "../escape", `a\b`} {
		err := s.Write(domain.KindEndpoint, id, "x")
		assert.ErrorIs(t, err, domain.ErrIO, "id %q", id)
	}
}

func TestList(t *testing.T) {
	s, fs := newStore(t)

	require.NoError(t, s.Write(domain.KindWaypoint, "b", "two"))
	require.NoError(t, s.Write(domain.KindWaypoint, "a", "one"))
	require.NoError(t, afero.WriteFile(fs, "redstone/waypoints/.a.tmp-123", []byte("partial"), 0o644))
	require.NoError(t, fs.Mkdir("redstone/waypoints/nested", 0o755))

	entries, err := s.List(domain.KindWaypoint)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "a", Data: "one"}, {Name: "b", Data: "two"}}, entries)

	endpoints, err := s.List(domain.KindEndpoint)
	require.NoError(t, err)
	assert.Empty(t, endpoints)
}

func TestList_MissingDirectory(t *testing.T) {
	s := New(afero.NewMemMapFs(), "nowhere")

	_, err := s.List(domain.KindEndpoint)
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Write(domain.KindEndpoint, recordID, "x"))
	require.True(t, s.Exists(domain.KindEndpoint, recordID))

	require.NoError(t, s.Delete(domain.KindEndpoint, recordID))
	assert.False(t, s.Exists(domain.KindEndpoint, recordID))

	// missing file is fine
	assert.NoError(t, s.Delete(domain.KindEndpoint, recordID))
}

func TestDelete_CannotRemove(t *testing.T) {
	base := afero.NewMemMapFs()
	rw := New(base, "redstone")
	require.NoError(t, rw.EnsureLayout())
	require.NoError(t, rw.Write(domain.KindEndpoint, recordID, "x"))

	s := New(afero.NewReadOnlyFs(base), "redstone")
	err := s.Delete(domain.KindEndpoint, recordID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))
	assert.True(t, s.Exists(domain.KindEndpoint, recordID))

	// a missing file on a read-only fs is still not an error
	assert.NoError(t, s.Delete(domain.KindEndpoint, "absent"))
}

func TestStaleTemps(t *testing.T) {
	s, fs := newStore(t)
	now := time.Now()

	old := "." + recordID + ".tmp-111"
	fresh := "." + recordID + ".tmp-222"
	require.NoError(t, afero.WriteFile(fs, "redstone/endpoints/"+old, []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "redstone/endpoints/"+fresh, []byte("x"), 0o644))
	require.NoError(t, fs.Chtimes("redstone/endpoints/"+old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, s.Write(domain.KindEndpoint, recordID, "record"))

	names, err := s.StaleTemps(domain.KindEndpoint, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{old}, names)

	require.NoError(t, s.RemoveTemp(domain.KindEndpoint, old))
	assert.False(t, s.Exists(domain.KindEndpoint, old))
	assert.True(t, s.Exists(domain.KindEndpoint, recordID))

	assert.ErrorIs(t, s.RemoveTemp(domain.KindEndpoint, recordID), domain.ErrIO)
}
