package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/logging"
	"github.com/voxelsplace/voxbuf/voxel"
)

var (
	ErrNotFound    = errors.New("store: volume not found")
	ErrInvalidName = errors.New("store: invalid volume name")
)

// Observer receives the number of chunk records written and deleted by each save.
type Observer interface {
	ObserveStore(written, deleted int)
}

type Options struct {
	// InMemory keeps the database off disk; path is ignored.
	InMemory bool
	Observer Observer
}

// Store persists named voxel volumes chunk by chunk. Each chunk record holds
// the codec chunk encoding, and a sibling hash record lets Save skip chunks
// that did not change.
type Store struct {
	db  *badger.DB
	obs Observer
}

func Open(path string, opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	return &Store{db: db, obs: opts.Observer}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func volumePrefix(name string) string { return "vol/" + name + "/" }

func revKey(name string) []byte { return []byte(volumePrefix(name) + "rev") }

func chunkKey(name, kind string, cc voxel.ChunkCoord) []byte {
	return fmt.Appendf(nil, "%s%s/%d/%d/%d", volumePrefix(name), kind, cc.X, cc.Y, cc.Z)
}

// parseCoord reads the trailing x/y/z of a chunk or hash key.
func parseCoord(key, prefix string) (voxel.ChunkCoord, error) {
	parts := strings.Split(strings.TrimPrefix(key, prefix), "/")
	if len(parts) != 3 {
		return voxel.ChunkCoord{}, fmt.Errorf("malformed key %q", key)
	}
	var v [3]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return voxel.ChunkCoord{}, fmt.Errorf("malformed key %q: %w", key, err)
		}
		v[i] = int32(n)
	}
	return voxel.ChunkCoord{X: v[0], Y: v[1], Z: v[2]}, nil
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// storedHashes returns the hash record of every chunk of the volume.
func storedHashes(txn *badger.Txn, name string) (map[voxel.ChunkCoord]uint64, error) {
	prefix := volumePrefix(name) + "hash/"
	out := make(map[voxel.ChunkCoord]uint64)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		cc, err := parseCoord(string(item.Key()), prefix)
		if err != nil {
			return nil, err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		if len(v) != 8 {
			return nil, fmt.Errorf("bad hash record for chunk %v", cc)
		}
		out[cc] = binary.LittleEndian.Uint64(v)
	}
	return out, nil
}

// Save writes buf as volume name in a single transaction. Chunks whose encoded
// form hashes the same as the stored copy are skipped, and stored chunks that
// buf no longer has are deleted. It returns the new revision and the number of
// chunk records written.
func (s *Store) Save(name string, buf *voxel.Buffer) (uuid.UUID, int, error) {
	if err := checkName(name); err != nil {
		return uuid.Nil, 0, err
	}
	rev := uuid.New()
	written, deleted := 0, 0

	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := storedHashes(txn, name)
		if err != nil {
			return err
		}

		for _, cc := range buf.ChunkCoords() {
			ch, _ := buf.Chunk(cc)
			payload := codec.MarshalChunk(ch)
			h := xxhash.Sum64(payload)
			prev, had := old[cc]
			delete(old, cc)
			if had && prev == h {
				continue
			}
			if err := txn.Set(chunkKey(name, "chunk", cc), payload); err != nil {
				return err
			}
			if err := txn.Set(chunkKey(name, "hash", cc), binary.LittleEndian.AppendUint64(nil, h)); err != nil {
				return err
			}
			written++
		}

		for cc := range old {
			if err := txn.Delete(chunkKey(name, "chunk", cc)); err != nil {
				return err
			}
			if err := txn.Delete(chunkKey(name, "hash", cc)); err != nil {
				return err
			}
			deleted++
		}
		return txn.Set(revKey(name), rev[:])
	})
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("save volume %q: %w", name, err)
	}

	logging.LogDebug("store: saved %s rev %s (%d written, %d deleted)", name, rev, written, deleted)
	if s.obs != nil {
		s.obs.ObserveStore(written, deleted)
	}
	return rev, written, nil
}

// Load reads volume name back into a new Buffer.
func (s *Store) Load(name string) (*voxel.Buffer, uuid.UUID, error) {
	if err := checkName(name); err != nil {
		return nil, uuid.Nil, err
	}
	buf := voxel.New()
	var rev uuid.UUID

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(revKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if rev, err = uuid.FromBytes(raw); err != nil {
			return fmt.Errorf("bad revision record: %w", err)
		}

		prefix := volumePrefix(name) + "chunk/"
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			cc, err := parseCoord(string(item.Key()), prefix)
			if err != nil {
				return err
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			ch, err := codec.UnmarshalChunk(data)
			if err != nil {
				return fmt.Errorf("chunk %v: %w", cc, err)
			}
			buf.Insert(cc, ch)
		}
		return nil
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load volume %q: %w", name, err)
	}
	return buf, rev, nil
}

// Delete removes every record of volume name.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	prefix := []byte(volumePrefix(name))
	err := s.db.Update(func(txn *badger.Txn) error {
		var keys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		if len(keys) == 0 {
			return ErrNotFound
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete volume %q: %w", name, err)
	}
	return nil
}

// Volumes lists the stored volume names in key order.
func (s *Store) Volumes() ([]string, error) {
	var names []string
	prefix := []byte("vol/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if name, ok := strings.CutSuffix(strings.TrimPrefix(key, "vol/"), "/rev"); ok && !strings.Contains(name, "/") {
				names = append(names, name)
			}
		}
		return nil
	})
	return names, err
}
