package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/himanishpuri/ChromaDNA/pkg/logger"
	"github.com/himanishpuri/ChromaDNA/pkg/models"
)

// Key layout:
//
//	t/<id>                 msgpack track
//	n/<title>\x00<artist>  id
//	h/<hash hex>/<id>      empty, hash index
const (
	trackPrefix = "t/"
	namePrefix  = "n/"
	hashPrefix  = "h/"
)

// KVOptions configures a KVStore.
type KVOptions struct {
	// Dir holds the badger files. Required unless InMemory is set.
	Dir string

	// InMemory keeps everything in memory, for tests and throwaway catalogs.
	InMemory bool

	// Logger receives badger's warnings and errors. Nil discards them.
	Logger *logger.Logger
}

// KVStore keeps tracks in BadgerDB.
type KVStore struct {
	db *badger.DB
}

func NewKVStore(opts KVOptions) (*KVStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("storage: KVOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{log.With("[badger]")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &KVStore{db: db}, nil
}

func (s *KVStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func trackKey(id string) []byte { return []byte(trackPrefix + id) }

func nameKey(title, artist string) []byte {
	return []byte(namePrefix + title + "\x00" + artist)
}

func hashIndexPrefix(hash uint32) string { return fmt.Sprintf("%s%08x/", hashPrefix, hash) }

func hashKey(hash uint32, id string) []byte { return []byte(hashIndexPrefix(hash) + id) }

func getTrack(txn *badger.Txn, id string) (*models.Track, error) {
	item, err := txn.Get(trackKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var t models.Track
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &t)
	})
	if err != nil {
		return nil, fmt.Errorf("decoding track %s: %w", id, err)
	}
	return &t, nil
}

// SaveTrack stores a track and returns its ID. A track with the same title
// and artist keeps its ID and gets the new fingerprint.
func (s *KVStore) SaveTrack(track *models.Track) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New(errDBClientNil)
	}

	var id string
	err := s.db.Update(func(txn *badger.Txn) error {
		t := *track
		t.ID = uuid.NewString()
		t.CreatedAt = time.Now().UTC()

		item, err := txn.Get(nameKey(track.Title, track.Artist))
		switch {
		case err == nil:
			existing, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			old, err := getTrack(txn, string(existing))
			if err != nil {
				return err
			}
			if err := txn.Delete(hashKey(old.Hash, old.ID)); err != nil {
				return err
			}
			t.ID, t.CreatedAt = old.ID, old.CreatedAt
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		val, err := msgpack.Marshal(&t)
		if err != nil {
			return err
		}
		if err := txn.Set(trackKey(t.ID), val); err != nil {
			return err
		}
		if err := txn.Set(nameKey(t.Title, t.Artist), []byte(t.ID)); err != nil {
			return err
		}
		if err := txn.Set(hashKey(t.Hash, t.ID), nil); err != nil {
			return err
		}
		id = t.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("saving track: %w", err)
	}
	return id, nil
}

func (s *KVStore) GetTrackByID(id string) (*models.Track, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errDBClientNil)
	}
	var t *models.Track
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		t, err = getTrack(txn, id)
		return err
	})
	return t, err
}

func (s *KVStore) ListTracks() ([]models.Track, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errDBClientNil)
	}
	var tracks []models.Track
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(trackPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var t models.Track
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &t)
			}); err != nil {
				return fmt.Errorf("decoding track: %w", err)
			}
			tracks = append(tracks, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	sortTracks(tracks)
	return tracks, nil
}

func (s *KVStore) DeleteTrack(id string) error {
	if s == nil || s.db == nil {
		return errors.New(errDBClientNil)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		t, err := getTrack(txn, id)
		if err != nil {
			return err
		}
		for _, key := range [][]byte{trackKey(t.ID), nameKey(t.Title, t.Artist), hashKey(t.Hash, t.ID)} {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindTracks returns the tracks whose hash is within maxDistance bits of
// hash. A distance of 0 uses the hash index, a negative one matches nothing.
func (s *KVStore) FindTracks(hash uint32, maxDistance int) ([]models.Track, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errDBClientNil)
	}
	if maxDistance < 0 {
		return nil, nil
	}
	if maxDistance > 0 {
		tracks, err := s.ListTracks()
		if err != nil {
			return nil, err
		}
		return withinDistance(tracks, hash, maxDistance), nil
	}

	var tracks []models.Track
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := hashIndexPrefix(hash)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id := strings.TrimPrefix(string(it.Item().Key()), prefix)
			t, err := getTrack(txn, id)
			if err != nil {
				return err
			}
			tracks = append(tracks, *t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying tracks by hash: %w", err)
	}
	sortTracks(tracks)
	return tracks, nil
}

func (s *KVStore) CountTracks() (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New(errDBClientNil)
	}
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(trackPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return count, nil
}

func sortTracks(tracks []models.Track) {
	slices.SortFunc(tracks, func(a, b models.Track) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// badgerLogger routes badger's messages to a chromadna logger. Its info
// chatter goes to DEBUG.
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.log.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.log.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debugf(f, v...) }
