package rdb

import (
	"os"
	"path/filepath"
	"testing"

	"keygrid/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Strings.Set("str", "hello"))
	require.NoError(t, s.Lists.Set("list", store.NewList("a", "b", "c")))
	require.NoError(t, s.Hashes.Set("hash", store.HashFrom(map[string]string{"name": "alice", "age": "42"})))
	require.NoError(t, s.Sets.Set("set", store.NewSet("x", "y")))
	z := store.NewSortedSet()
	z.Add("bob", 1.5)
	z.Add("carol", -3)
	require.NoError(t, s.ZSets.Set("zset", z))
	b := store.NewDefaultBloom()
	b.Add("seen")
	require.NoError(t, s.Blooms.Set("bloom", b))
	// same key under two types
	require.NoError(t, s.Strings.Set("list", "shadow"))
	return s
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rdb")
	snap, err := sampleStore(t).Snapshot()
	require.NoError(t, err)

	require.NoError(t, Write(path, snap))
	assert.FileExists(t, path)
	assert.FileExists(t, SidecarPath(path))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"str": "hello", "list": "shadow"}, got.Strings)
	assert.Equal(t, []string{"a", "b", "c"}, got.Lists["list"])
	assert.Equal(t, map[string]string{"name": "alice", "age": "42"}, got.Hashes["hash"])
	assert.ElementsMatch(t, []string{"x", "y"}, got.Sets["set"])
	assert.ElementsMatch(t, []store.ZEntry{{Member: "carol", Score: -3}, {Member: "bob", Score: 1.5}}, got.ZSets["zset"])

	require.Contains(t, got.Blooms, "bloom")
	restored := store.Restore(got)
	bl, ok, err := restored.Blooms.Get("bloom")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bl.Test("seen"))
}

func TestEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, Write(path, store.NewSnapshot()))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Keys())
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.rdb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadWithoutSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rdb")
	snap, err := sampleStore(t).Snapshot()
	require.NoError(t, err)
	require.NoError(t, Write(path, snap))
	require.NoError(t, os.Remove(SidecarPath(path)))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got.Blooms)
	assert.Equal(t, "hello", got.Strings["str"])
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, os.WriteFile(path, []byte("not an rdb file"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")
	snap, err := sampleStore(t).Snapshot()
	require.NoError(t, err)
	require.NoError(t, Write(path, snap))
	require.NoError(t, Write(path, snap))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"dump.rdb", "dump.rdb.blooms.gob"}, names)
}

func TestSnapshotsInOneDirectoryKeepSeparateBlooms(t *testing.T) {
	dir := t.TempDir()
	first, second := filepath.Join(dir, "first.rdb"), filepath.Join(dir, "second.rdb")
	assert.NotEqual(t, SidecarPath(first), SidecarPath(second))

	snap, err := sampleStore(t).Snapshot()
	require.NoError(t, err)
	require.NoError(t, Write(first, snap))

	other := store.New()
	b := store.NewDefaultBloom()
	b.Add("other")
	require.NoError(t, other.Blooms.Set("bloom2", b))
	snap, err = other.Snapshot()
	require.NoError(t, err)
	require.NoError(t, Write(second, snap))

	got, err := Read(first)
	require.NoError(t, err)
	assert.Contains(t, got.Blooms, "bloom")
	assert.NotContains(t, got.Blooms, "bloom2")

	got, err = Read(second)
	require.NoError(t, err)
	assert.Contains(t, got.Blooms, "bloom2")
	assert.NotContains(t, got.Blooms, "bloom")
}
