package db_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/renproject/substrate-signer/db"
)

var _ = Describe("DB", func() {
	Context("when building keys", func() {
		It("should concatenate the parts in order", func() {
			key := db.Key([]byte("NS"), []byte("tag"), []byte{0x01, 0x02})
			Expect(key).To(Equal([]byte("NStag\x01\x02")))
		})
	})

	Context("when using the in memory store", func() {
		It("should return ErrKeyNotFound for absent keys", func() {
			store := db.NewMemory()
			_, err := store.Get([]byte("missing"))
			Expect(err).To(Equal(db.ErrKeyNotFound))
		})

		It("should not make writes visible before commit", func() {
			store := db.NewMemory()
			txn := store.Txn()
			txn.Put([]byte("k"), []byte("v"))

			_, err := store.Get([]byte("k"))
			Expect(err).To(Equal(db.ErrKeyNotFound))

			Expect(txn.Commit()).To(Succeed())
			value, err := store.Get([]byte("k"))
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal([]byte("v")))
		})

		It("should apply all writes in a transaction atomically", func() {
			store := db.NewMemory()
			txn := store.Txn()
			txn.Put([]byte("a"), []byte{1})
			txn.Put([]byte("b"), []byte{2})
			Expect(txn.Commit()).To(Succeed())

			a, err := store.Get([]byte("a"))
			Expect(err).ToNot(HaveOccurred())
			Expect(a).To(Equal([]byte{1}))
			b, err := store.Get([]byte("b"))
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal([]byte{2}))
		})

		It("should store empty sentinel values", func() {
			store := db.NewMemory()
			txn := store.Txn()
			txn.Put([]byte("sentinel"), []byte{})
			Expect(txn.Commit()).To(Succeed())

			value, err := store.Get([]byte("sentinel"))
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(BeEmpty())
		})
	})
})
