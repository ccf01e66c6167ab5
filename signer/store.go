package signer

import (
	"fmt"

	"github.com/renproject/substrate-signer/batch"
	"github.com/renproject/substrate-signer/db"
)

// Persisted record layout, under the "SUBSTRATE_SIGNER" namespace:
//
//	attempt + SignID    -> empty sentinel; the attempt has been preprocessed
//	completed + id      -> [1]; the batch is signed, or was observed signed
//	batch + id          -> canonical encoding of the SignedBatch
//
// The attempt sentinel is committed before the preprocess for that attempt
// is emitted, and the completed sentinel together with the signed batch are
// committed before the SignedBatch event is emitted. The store is the sole
// synchronisation point with the signer's future self, so a failed read or
// commit is fatal: proceeding past one could reuse round one nonces.
var (
	dbNamespace    = []byte("SUBSTRATE_SIGNER")
	dbAttemptTag   = []byte("attempt")
	dbCompletedTag = []byte("completed")
	dbBatchTag     = []byte("batch")
)

type signerDB struct {
	db db.DB
}

func (sdb signerDB) signKey(tag, key []byte) []byte {
	return db.Key(dbNamespace, tag, key)
}

func (sdb signerDB) has(key []byte) bool {
	_, err := sdb.db.Get(key)
	if err == db.ErrKeyNotFound {
		return false
	}
	if err != nil {
		panic(fmt.Sprintf("reading signer state: %v", err))
	}
	return true
}

func (sdb signerDB) completedKey(id [32]byte) []byte {
	return sdb.signKey(dbCompletedTag, id[:])
}

func (sdb signerDB) complete(txn db.Txn, id [32]byte) {
	txn.Put(sdb.completedKey(id), []byte{1})
}

func (sdb signerDB) completed(id [32]byte) bool {
	return sdb.has(sdb.completedKey(id))
}

func (sdb signerDB) attemptKey(id SignID) []byte {
	return sdb.signKey(dbAttemptTag, id.Bytes())
}

func (sdb signerDB) attempt(txn db.Txn, id SignID) {
	txn.Put(sdb.attemptKey(id), []byte{})
}

func (sdb signerDB) hasAttempt(id SignID) bool {
	return sdb.has(sdb.attemptKey(id))
}

func (sdb signerDB) saveBatch(txn db.Txn, signed batch.SignedBatch) {
	txn.Put(sdb.signKey(dbBatchTag, signed.Batch.Block[:]), signed.Encode())
}
