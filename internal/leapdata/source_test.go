package leapdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testExpiredDoc = `#@	2303683200
2272060800	10	# 1 Jan 1972
2287785600	11	# 1 Jul 1972
`

func fixNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func writeDoc(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func TestResolve(t *testing.T) {
	fixNow(t, time.Unix(1600000000, 0))

	t.Run("First unexpired candidate wins", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		system := filepath.Join(dir, "system", "leap-seconds.list")
		writeDoc(t, cache, testIETFDoc)
		writeDoc(t, system, testIETFDoc)

		s := Source{CacheFile: cache, SystemFiles: []string{system}}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.False(degraded)
		assert.Equal(cache, table.Source)
	})

	t.Run("Override is tried first", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		override := filepath.Join(dir, "override.list")
		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		writeDoc(t, override, testIETFDoc)
		writeDoc(t, cache, testIETFDoc)

		s := Source{Override: override, CacheFile: cache}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.False(degraded)
		assert.Equal(override, table.Source)
	})

	t.Run("Expired candidates are skipped", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		system := filepath.Join(dir, "system", "leap-seconds.list")
		writeDoc(t, cache, testExpiredDoc)
		writeDoc(t, system, testIETFDoc)

		s := Source{CacheFile: cache, SystemFiles: []string{system}}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.False(degraded)
		assert.Equal(system, table.Source)
	})

	t.Run("Unparseable candidates are skipped", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		system := filepath.Join(dir, "system", "leap-seconds.list")
		writeDoc(t, cache, "garbage\n")
		writeDoc(t, system, testIETFDoc)

		s := Source{CacheFile: cache, SystemFiles: []string{system}}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.False(degraded)
		assert.Equal(system, table.Source)
	})

	t.Run("All candidates expired returns last parsed and degraded", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		system := filepath.Join(dir, "system", "leap-seconds.list")
		writeDoc(t, cache, testExpiredDoc)
		writeDoc(t, system, testExpiredDoc)

		s := Source{CacheFile: cache, SystemFiles: []string{system}}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.True(degraded)
		assert.Equal(system, table.Source)
		assert.NotEmpty(table.Events)
	})

	t.Run("No candidate at all is an error", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		s := Source{CacheFile: filepath.Join(dir, "missing.list")}
		_, _, err := s.Resolve()
		assert.Error(err)
	})

	t.Run("Packaged table is the last resort", func(t *testing.T) {
		assert := require.New(t)
		dir := t.TempDir()

		cache := filepath.Join(dir, "cache", "leap-seconds.list")
		writeDoc(t, cache, testExpiredDoc)

		s := Source{CacheFile: cache, Packaged: true}
		table, degraded, err := s.Resolve()
		assert.NoError(err)
		assert.False(degraded)
		assert.Equal("packaged", table.Source)
	})
}

func TestSetupAndGet(t *testing.T) {
	fixNow(t, time.Unix(1600000000, 0))
	assert := require.New(t)
	dir := t.TempDir()

	cache := filepath.Join(dir, "cache", "leap-seconds.list")
	writeDoc(t, cache, testIETFDoc)

	var c = testConfig(cache, "")
	assert.NoError(Setup(c))

	table := Get()
	assert.NotNil(table)
	assert.Equal(cache, table.Source)
}
