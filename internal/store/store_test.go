package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossTypeKeysCoexist(t *testing.T) {
	s := New()
	require.NoError(t, s.Strings.Set("k", "v"))
	require.NoError(t, s.Lists.Set("k", NewList("a")))

	typ, err := s.Type("k")
	require.NoError(t, err)
	assert.Equal(t, TypeString, typ)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	n, err := s.Delete("k")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.Exists("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreType(t *testing.T) {
	s := New()
	require.NoError(t, s.Hashes.Set("h", NewHash()))
	require.NoError(t, s.ZSets.Set("z", NewSortedSet()))
	require.NoError(t, s.Blooms.Set("b", NewDefaultBloom()))

	for key, want := range map[string]string{"h": TypeHash, "z": TypeZSet, "b": TypeBloom, "nope": TypeNone} {
		got, err := s.Type(key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}
}

func TestStoreKeysPattern(t *testing.T) {
	s := New()
	require.NoError(t, s.Strings.Set("user:1", "a"))
	require.NoError(t, s.Strings.Set("user:2", "b"))
	require.NoError(t, s.Lists.Set("user:3", NewList("c")))
	require.NoError(t, s.Sets.Set("other", NewSet("d")))

	keys, err := s.Keys("user:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:1", "user:2", "user:3"}, keys)

	keys, err = s.Keys("*")
	require.NoError(t, err)
	assert.Len(t, keys, 4)
}

func TestStoreRename(t *testing.T) {
	s := New()
	require.NoError(t, s.Strings.Set("src", "v"))
	require.NoError(t, s.Lists.Set("dst", NewList("old")))

	ok, err := s.Rename("src", "dst")
	require.NoError(t, err)
	assert.True(t, ok)

	v, found, _ := s.Strings.Get("dst")
	assert.True(t, found)
	assert.Equal(t, "v", v)
	exists, _ := s.Lists.Exists("dst")
	assert.False(t, exists)

	ok, err = s.Rename("missing", "dst")
	require.NoError(t, err)
	assert.False(t, ok)
	_, found, _ = s.Strings.Get("dst")
	assert.True(t, found)
}

func TestStoreFlushAndCounts(t *testing.T) {
	s := New()
	require.NoError(t, s.Strings.Set("a", "1"))
	require.NoError(t, s.Sets.Set("b", NewSet("x")))
	assert.Equal(t, 1, s.Counts()[TypeString])
	assert.Equal(t, 1, s.Counts()[TypeSet])

	s.Flush()
	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, key string
		want         bool
	}{
		{"*", "anything", true},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h*llo", "heeeello", true},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
		{"h[^e]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-c]llo", "hbllo", true},
		{"h\\*llo", "h*llo", true},
		{"h\\*llo", "hello", false},
		{"*:*", "user:1", true},
		{"user:*:name", "user:42:name", true},
		{"user:*:name", "user:42:age", false},
		{"abc", "abc", true},
		{"abc", "abcd", false},
		{"[abc", "a", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Match(c.pattern, c.key), "%q ~ %q", c.pattern, c.key)
	}
}
