// Package storage persists engine state in a BoltDB file: whole-object JSON
// records, per-address accounts, the factory id counter, and the vault
// bookkeeping tables.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	bolt "go.etcd.io/bbolt"

	"brickshare/core/types"
	"brickshare/native/object"
)

var (
	bucketObjects   = []byte("objects")
	bucketAccounts  = []byte("accounts")
	bucketMeta      = []byte("meta")
	bucketClaims    = []byte("claims")
	bucketReferrals = []byte("referrals")

	keyNextObjectID = []byte("nextObjectId")

	// ErrCorruptRecord is returned when a stored value cannot be decoded.
	ErrCorruptRecord = errors.New("storage: corrupt record")
)

// Store is the BoltDB-backed state shared by the engine, the factory, and
// the vaults.
type Store struct {
	db *bolt.DB
}

// NewStore opens (and migrates) the database at path.
func NewStore(path string, options *bolt.Options) (*Store, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	} else if options.Timeout == 0 {
		options.Timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketObjects, bucketAccounts, bucketMeta, bucketClaims, bucketReferrals} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func objectKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// ObjectPut stores the full object record under its id.
func (s *Store) ObjectPut(obj *object.Object) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketObjects).Put(objectKey(obj.ID), raw)
	})
}

// ObjectGet loads an object record by id.
func (s *Store) ObjectGet(id uint64) (*object.Object, bool, error) {
	var obj *object.Object
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketObjects).Get(objectKey(id))
		if raw == nil {
			return nil
		}
		decoded := new(object.Object)
		if err := json.Unmarshal(raw, decoded); err != nil {
			return ErrCorruptRecord
		}
		obj = decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return obj, obj != nil, nil
}

// ListObjectIDs returns every stored object id in ascending order.
func (s *Store) ListObjectIDs() ([]uint64, error) {
	var ids []uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketObjects).ForEach(func(key, _ []byte) error {
			if len(key) == 8 {
				ids = append(ids, binary.BigEndian.Uint64(key))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetAccount loads an account, returning a fresh empty account when none is
// stored yet.
func (s *Store) GetAccount(addr []byte) (*types.Account, error) {
	account := types.NewAccount()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketAccounts).Get(addr)
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, account); err != nil {
			return ErrCorruptRecord
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if account.Balances == nil {
		account.Balances = make(map[string]*big.Int)
	}
	return account, nil
}

// PutAccount stores an account under its address.
func (s *Store) PutAccount(addr []byte, account *types.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return err
	}
	key := make([]byte, len(addr))
	copy(key, addr)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAccounts).Put(key, raw)
	})
}

// NextObjectID returns the next id the factory should assign, starting at 1.
func (s *Store) NextObjectID() (uint64, error) {
	var id uint64 = 1
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyNextObjectID)
		if len(raw) == 8 {
			id = binary.BigEndian.Uint64(raw)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetNextObjectID persists the factory id counter.
func (s *Store) SetNextObjectID(id uint64) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, id)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyNextObjectID, raw)
	})
}

func claimKey(objectID, tokenID uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key, objectID)
	binary.BigEndian.PutUint64(key[8:], tokenID)
	return key
}

func decodeBig(raw []byte) (*big.Int, error) {
	if raw == nil {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, ErrCorruptRecord
	}
	return value, nil
}

// EarningsClaimedGet returns the cumulative claimed USD value for a token.
func (s *Store) EarningsClaimedGet(objectID, tokenID uint64) (*big.Int, error) {
	var claimed *big.Int
	err := s.db.View(func(tx *bolt.Tx) error {
		value, err := decodeBig(tx.Bucket(bucketClaims).Get(claimKey(objectID, tokenID)))
		if err != nil {
			return err
		}
		claimed = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// EarningsClaimedPut records the cumulative claimed USD value for a token.
func (s *Store) EarningsClaimedPut(objectID, tokenID uint64, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketClaims).Put(claimKey(objectID, tokenID), []byte(amount.String()))
	})
}

// ReferralRewardGet returns the accrued unclaimed USD reward of a referrer.
func (s *Store) ReferralRewardGet(addr [20]byte) (*big.Int, error) {
	var reward *big.Int
	err := s.db.View(func(tx *bolt.Tx) error {
		value, err := decodeBig(tx.Bucket(bucketReferrals).Get(addr[:]))
		if err != nil {
			return err
		}
		reward = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// ReferralRewardPut records the accrued unclaimed USD reward of a referrer.
func (s *Store) ReferralRewardPut(addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	key := make([]byte, len(addr))
	copy(key, addr[:])
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReferrals).Put(key, []byte(amount.String()))
	})
}
