// Package hintstore keeps the hints of distributed signing sessions between
// rounds. A session is opened for one proposition; every party adds the
// hints it produces or receives and reads the merged bag back when proving.
//
// Own commitments hold secret randomness: the database file is only
// readable by its owner and must never be shared.
package hintstore

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/drand/kyber"
	"github.com/google/uuid"
	json "github.com/nikkolasg/hexjson"
	bolt "go.etcd.io/bbolt"

	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

// FileName is the name of the database file in the store folder.
const FileName = "hints.db"

// OpenPerm is the permission of the database file.
const OpenPerm = 0600

var (
	sessionBucket = []byte("sessions")
	hintBucket    = []byte("hints")
)

// ErrNoSession is returned for an unknown session id.
var ErrNoSession = errors.New("no such session")

// Session describes a signing session.
type Session struct {
	ID          uuid.UUID `json:"id"`
	Proposition []byte    `json:"proposition"`
	Created     int64     `json:"created"`
}

// Prop decodes the proposition the session signs for.
func (s *Session) Prop(g kyber.Group) (sigma.SigmaBoolean, error) {
	return sigma.Parse(g, s.Proposition)
}

// Store persists sessions in a bbolt database.
type Store struct {
	db    *bolt.DB
	group kyber.Group
	log   log.Logger
}

// Open opens, creating it if needed, the store in folder. Points and scalars
// of stored hints are decoded in g.
func Open(l log.Logger, folder string, g kyber.Group, opts *bolt.Options) (*Store, error) {
	db, err := bolt.Open(path.Join(folder, FileName), OpenPerm, opts)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(hintBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, group: g, log: l.Named("hintstore")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewSession opens a session for sb, created at the given unix time.
func (s *Store) NewSession(ctx context.Context, sb sigma.SigmaBoolean, created int64) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prop, err := sigma.Bytes(sb)
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: uuid.New(), Proposition: prop, Created: created}
	buff, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(sess.ID[:], buff)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debugw("session opened", "id", sess.ID.String(), "prop", sb.String())
	return sess, nil
}

// Session returns the session id.
func (s *Store) Session(ctx context.Context, id uuid.UUID) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := new(Session)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get(id[:])
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNoSession, id)
		}
		return json.Unmarshal(v, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Sessions returns the ids of all sessions.
func (s *Store) Sessions(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).ForEach(func(k, _ []byte) error {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
	})
	return ids, err
}

// Put adds the hints of bag to the session id.
func (s *Store) Put(ctx context.Context, id uuid.UUID, bag *proof.HintsBag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(sessionBucket).Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrNoSession, id)
		}
		hints := tx.Bucket(hintBucket)
		merged := bag
		if v := hints.Get(id[:]); v != nil {
			stored, err := UnmarshalBag(s.group, v)
			if err != nil {
				return err
			}
			merged = stored.Merge(bag)
		}
		buff, err := MarshalBag(merged)
		if err != nil {
			return err
		}
		if err := hints.Put(id[:], buff); err != nil {
			s.log.Debugw("storing hints", "session", id.String(), "err", err)
			return err
		}
		return nil
	})
}

// Get returns every hint added to the session id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*proof.HintsBag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var bag *proof.HintsBag
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(sessionBucket).Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrNoSession, id)
		}
		v := tx.Bucket(hintBucket).Get(id[:])
		if v == nil {
			bag = proof.NewHintsBag()
			return nil
		}
		var err error
		bag, err = UnmarshalBag(s.group, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bag, nil
}

// Delete removes the session id and its hints.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(sessionBucket).Delete(id[:]); err != nil {
			return err
		}
		return tx.Bucket(hintBucket).Delete(id[:])
	})
}
