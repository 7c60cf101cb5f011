package chromadna

import (
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/storage"
	"github.com/himanishpuri/ChromaDNA/pkg/logger"
)

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewBadgerStorage creates a BadgerDB storage backend in dir. An empty dir
// keeps the catalog in memory.
func NewBadgerStorage(dir string) (Storage, error) {
	kv, err := storage.NewKVStore(storage.KVOptions{
		Dir:      dir,
		InMemory: dir == "",
		Logger:   logger.GetLogger(),
	})
	if err != nil {
		return nil, err
	}
	return kv, nil
}
