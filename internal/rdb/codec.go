// Package rdb reads and writes keyspace snapshots. Strings, lists, hashes,
// sets and sorted sets go into a Redis-compatible RDB file; bloom filters,
// which RDB has no portable encoding for, go into a gob sidecar next to it.
package rdb

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"keygrid/internal/store"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/hdt3213/rdb/core"
	"github.com/hdt3213/rdb/encoder"
	"github.com/hdt3213/rdb/model"
	"github.com/hdt3213/rdb/parser"
)

const (
	redisVersion = "7.0.0"
	sidecarExt   = ".blooms.gob"
)

// SidecarPath returns where the bloom filters for the snapshot at path live:
// next to it, named after it.
func SidecarPath(path string) string {
	return path + sidecarExt
}

// Write stores snap at path. Both files are written under temporary names and
// renamed into place, so a crash mid-write leaves the previous snapshot intact.
func Write(path string, snap *store.Snapshot) error {
	blooms := snap.Blooms
	if blooms == nil {
		blooms = map[string]*bloom.BloomFilter{}
	}
	if err := writeAtomic(SidecarPath(path), func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(blooms)
	}); err != nil {
		return fmt.Errorf("write bloom sidecar: %w", err)
	}
	if err := writeAtomic(path, func(w io.Writer) error {
		return encode(w, snap)
	}); err != nil {
		return fmt.Errorf("write rdb: %w", err)
	}
	return nil
}

func writeAtomic(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = fill(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func encode(w io.Writer, snap *store.Snapshot) error {
	enc := encoder.NewEncoder(w)
	if err := enc.WriteHeader(); err != nil {
		return err
	}
	for k, v := range map[string]string{
		"redis-ver":    redisVersion,
		"redis-bits":   "64",
		"aof-preamble": "0",
	} {
		if err := enc.WriteAux(k, v); err != nil {
			return err
		}
	}

	entries := len(snap.Strings) + len(snap.Lists) + len(snap.Hashes) + len(snap.Sets) + len(snap.ZSets)
	if entries > 0 {
		if err := enc.WriteDBHeader(0, uint64(entries), 0); err != nil {
			return err
		}
		if err := writeObjects(enc, snap); err != nil {
			return err
		}
	}
	return enc.WriteEnd()
}

func writeObjects(enc *core.Encoder, snap *store.Snapshot) error {
	for _, key := range sortedKeys(snap.Strings) {
		if err := enc.WriteStringObject(key, []byte(snap.Strings[key])); err != nil {
			return fmt.Errorf("string %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(snap.Lists) {
		if err := enc.WriteListObject(key, toBytes(snap.Lists[key])); err != nil {
			return fmt.Errorf("list %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(snap.Hashes) {
		fields := make(map[string][]byte, len(snap.Hashes[key]))
		for f, v := range snap.Hashes[key] {
			fields[f] = []byte(v)
		}
		if err := enc.WriteHashMapObject(key, fields); err != nil {
			return fmt.Errorf("hash %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(snap.Sets) {
		if err := enc.WriteSetObject(key, toBytes(snap.Sets[key])); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(snap.ZSets) {
		zs := snap.ZSets[key]
		entries := make([]*model.ZSetEntry, 0, len(zs))
		for _, e := range zs {
			entries = append(entries, &model.ZSetEntry{Member: e.Member, Score: e.Score})
		}
		if err := enc.WriteZSetObject(key, entries); err != nil {
			return fmt.Errorf("zset %q: %w", key, err)
		}
	}
	return nil
}

// Read loads the snapshot at path. A missing RDB file is reported with an
// error wrapping os.ErrNotExist; a missing sidecar just means no blooms.
func Read(path string) (*store.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap := store.NewSnapshot()
	if err := decode(f, snap); err != nil {
		return nil, fmt.Errorf("read rdb %s: %w", path, err)
	}

	blooms, err := readSidecar(SidecarPath(path))
	if err != nil {
		return nil, fmt.Errorf("read bloom sidecar: %w", err)
	}
	snap.Blooms = blooms
	return snap, nil
}

func decode(r io.Reader, snap *store.Snapshot) error {
	return parser.NewDecoder(r).Parse(func(o parser.RedisObject) bool {
		switch obj := o.(type) {
		case *parser.StringObject:
			snap.Strings[obj.Key] = string(obj.Value)
		case *parser.ListObject:
			snap.Lists[obj.Key] = toStrings(obj.Values)
		case *parser.HashObject:
			fields := make(map[string]string, len(obj.Hash))
			for f, v := range obj.Hash {
				fields[f] = string(v)
			}
			snap.Hashes[obj.Key] = fields
		case *parser.SetObject:
			snap.Sets[obj.Key] = toStrings(obj.Members)
		case *parser.ZSetObject:
			entries := make([]store.ZEntry, 0, len(obj.Entries))
			for _, e := range obj.Entries {
				entries = append(entries, store.ZEntry{Member: e.Member, Score: e.Score})
			}
			snap.ZSets[obj.Key] = entries
		}
		return true
	})
}

func readSidecar(path string) (map[string]*bloom.BloomFilter, error) {
	blooms := make(map[string]*bloom.BloomFilter)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return blooms, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&blooms); err != nil {
		return nil, err
	}
	return blooms, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toBytes(vals []string) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out
}

func toStrings(vals [][]byte) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}
