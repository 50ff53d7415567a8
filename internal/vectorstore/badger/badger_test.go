package badger

import (
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigist/internal/vectorstore"
)

func open(t *testing.T, path string) *Snapshotter {
	t.Helper()
	s, err := Open(path, log.Logger{Level: log.PanicLevel})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadWithoutSnapshot(t *testing.T) {
	s := open(t, t.TempDir())
	_, err := s.Load()
	assert.ErrorIs(t, err, vectorstore.ErrNoSnapshot)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := open(t, t.TempDir())

	require.NoError(t, s.Save([]byte(`{"version":1}`)))
	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":1}`), data)

	// overwrites replace, they never append
	require.NoError(t, s.Save([]byte(`{"version":1,"n":2}`)))
	data, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":1,"n":2}`), data)
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, log.Logger{Level: log.PanicLevel})
	require.NoError(t, err)
	require.NoError(t, s.Save([]byte("blob")))
	require.NoError(t, s.Close())

	s = open(t, dir)
	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), data)
}
