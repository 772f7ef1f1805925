package store

import (
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	lderrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/gofastkv/shardstore/pkg/common/utils"
)

// Serializer is one physical backing file. It is thread-affine in the
// teacher's design (one worker thread per file); here it is a value
// owned by exactly one goroutine's call path at a time by construction —
// every access to it flows through the Multiplexer's pseudo-serializer
// views, which are themselves only touched from a shard's home-thread
// worker. It stores every logical slice the multiplexer lays onto this
// file, key-prefixed so slices sharing a file don't collide, mirroring
// LevelStore's per-shard key prefixing.
type Serializer struct {
	path string
	db   *leveldb.DB
}

// CreateSerializer formats path as an empty backing file, wiping any
// prior contents.
func CreateSerializer(path string) (*Serializer, error) {
	if err := utils.CheckAndMkdir(path); err != nil {
		return nil, err
	}
	utils.DeleteDir(path)
	if err := utils.CheckAndMkdir(path); err != nil {
		return nil, err
	}
	return OpenSerializer(path)
}

// OpenSerializer opens an existing backing file.
func OpenSerializer(path string) (*Serializer, error) {
	if err := utils.CheckAndMkdir(path); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		WriteBuffer: 4 * 1024 * 1024,
		NoSync:      true,
	})
	if err != nil {
		return nil, err
	}
	return &Serializer{path: path, db: db}, nil
}

func (s *Serializer) Close() error {
	return s.db.Close()
}

// CheckExisting reports whether path already holds a serializer's data,
// used by the existence checker (§4.6) before a destructive format.
func CheckExisting(path string) (bool, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: true})
	if err != nil {
		if err == leveldb.ErrNotFound || os.IsNotExist(err) || lderrors.IsCorrupted(err) {
			return false, nil
		}
		return false, err
	}
	defer db.Close()
	iter := db.NewIterator(nil, nil)
	defer iter.Release()
	return iter.First(), nil
}

func prefixedKey(prefix string, key []byte) []byte {
	buf := make([]byte, 0, len(prefix)+len(key))
	buf = append(buf, prefix...)
	buf = append(buf, key...)
	return buf
}

func (s *Serializer) get(prefix string, key []byte) ([]byte, error) {
	val, err := s.db.Get(prefixedKey(prefix, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return val, err
}

func (s *Serializer) put(prefix string, key, val []byte) error {
	return s.db.Put(prefixedKey(prefix, key), val, nil)
}

func (s *Serializer) delete(prefix string, key []byte) error {
	return s.db.Delete(prefixedKey(prefix, key), nil)
}

func (s *Serializer) iterateRange(prefix string, lo, hi []byte) iterator.Iterator {
	r := &util.Range{
		Start: prefixedKey(prefix, lo),
	}
	if hi != nil {
		r.Limit = prefixedKey(prefix, hi)
	} else {
		r.Limit = nil
	}
	return s.db.NewIterator(r, nil)
}

func (s *Serializer) clearPrefix(prefix string) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	batch := new(leveldb.Batch)
	for iter.First(); iter.Valid(); iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	return s.db.Write(batch, &opt.WriteOptions{Sync: false})
}

func (s *Serializer) sizeOfPrefix(prefix string) (int64, error) {
	sizes, err := s.db.SizeOf([]util.Range{*util.BytesPrefix([]byte(prefix))})
	if err != nil {
		return 0, err
	}
	total := int64(0)
	for _, sz := range sizes {
		total += sz
	}
	return total, nil
}

// PseudoSerializer is a non-owning, prefixed view onto a Serializer: the
// multiplexer's logical slice. It must not outlive the Serializer array
// it's a view into.
type PseudoSerializer struct {
	serializer *Serializer
	prefix     string
}

func (p *PseudoSerializer) Get(key []byte) ([]byte, error) {
	return p.serializer.get(p.prefix, key)
}

func (p *PseudoSerializer) Put(key, val []byte) error {
	return p.serializer.put(p.prefix, key, val)
}

func (p *PseudoSerializer) Delete(key []byte) error {
	return p.serializer.delete(p.prefix, key)
}

func (p *PseudoSerializer) IterateRange(lo, hi []byte) iterator.Iterator {
	return p.serializer.iterateRange(p.prefix, lo, hi)
}

func (p *PseudoSerializer) Clear() error {
	return p.serializer.clearPrefix(p.prefix)
}

func (p *PseudoSerializer) Size() (int64, error) {
	return p.serializer.sizeOfPrefix(p.prefix)
}

func slicePrefix(sliceIdx int) string {
	return fmt.Sprintf("s%04d:", sliceIdx)
}
