// Package boltdb implements the durable record store on a local bbolt
// database: one bucket per collection, JSON-encoded records keyed by record
// ID, plus a single-slot session bucket. There are no partial updates; the
// portal rewrites a whole collection after every mutation.
package boltdb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/Jomilqt/student-portal/core/student"
	"github.com/Jomilqt/student-portal/core/user"
)

var (
	usersBucket    = []byte("Users")
	studentsBucket = []byte("Students")
	sessionBucket  = []byte("Session")

	sessionKey = []byte("currentUser")

	// ErrUnavailable is returned when the database cannot be opened or a
	// transaction fails. Match with errors.Is.
	ErrUnavailable = errors.New("storage unavailable")
)

type Store struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the database at path and ensures all
// buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, unavailable(err, "creating data directory")
	}

	// bbolt locks the file; time out instead of blocking forever on a
	// concurrent process.
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, unavailable(err, "opening database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{usersBucket, studentsBucket, sessionBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, unavailable(err, "creating buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadAllUsers() ([]user.User, error) {
	return loadAll[user.User](s.db, usersBucket)
}

func (s *Store) ReplaceAllUsers(users []user.User) error {
	return replaceAll(s.db, usersBucket, func(u user.User) string { return u.ID }, users)
}

func (s *Store) LoadAllStudents() ([]student.Student, error) {
	return loadAll[student.Student](s.db, studentsBucket)
}

func (s *Store) ReplaceAllStudents(students []student.Student) error {
	return replaceAll(s.db, studentsBucket, func(st student.Student) string { return st.ID }, students)
}

// SaveSession writes the session snapshot to its dedicated slot.
func (s *Store) SaveSession(usr user.User) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(usr)
		if err != nil {
			return err
		}
		return tx.Bucket(sessionBucket).Put(sessionKey, data)
	})
	if err != nil {
		return unavailable(err, "saving session")
	}
	return nil
}

// LoadSession reads the session snapshot; ok is false when no session is
// stored.
func (s *Store) LoadSession() (usr user.User, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get(sessionKey)
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &usr); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return user.User{}, false, unavailable(err, "loading session")
	}
	return usr, ok, nil
}

func (s *Store) ClearSession() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(sessionKey)
	})
	if err != nil {
		return unavailable(err, "clearing session")
	}
	return nil
}

// loadAll returns every record in the bucket; insertion order is not part of
// the contract.
func loadAll[T any](db *bbolt.DB, bucket []byte) ([]T, error) {
	var out []T
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			var rec T
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, unavailable(err, "loading "+string(bucket))
	}
	return out, nil
}

// replaceAll clears the bucket and writes every record within a single
// read-write transaction: a failure part-way through rolls the whole bucket
// back to its previous state.
func replaceAll[T any](db *bbolt.DB, bucket []byte, key func(T) string, recs []T) error {
	err := db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(key(rec)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return unavailable(err, "replacing "+string(bucket))
	}
	return nil
}

func unavailable(err error, msg string) error {
	return errors.Wrapf(ErrUnavailable, "%s: %s", msg, err)
}
