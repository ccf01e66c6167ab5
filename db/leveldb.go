package db

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is a DB backed by a LevelDB database on disk. Commits are synced,
// so a commit that has returned survives a crash.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a LevelDB database at the given
// path.
func OpenLevelDB(path string) (*LevelDB, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", path)
	}
	return &LevelDB{db: ldb}, nil
}

// Get implements the DB interface.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading key")
	}
	return value, nil
}

// Txn implements the DB interface.
func (l *LevelDB) Txn() Txn {
	return &levelDBTxn{db: l.db, batch: new(leveldb.Batch)}
}

// Close closes the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelDBTxn struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (txn *levelDBTxn) Put(key, value []byte) {
	txn.batch.Put(key, value)
}

func (txn *levelDBTxn) Commit() error {
	return errors.Wrap(txn.db.Write(txn.batch, &opt.WriteOptions{Sync: true}), "committing transaction")
}
