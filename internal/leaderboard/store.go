package leaderboard

import (
	"encoding/json"
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "lb/"

// Store keeps counters in an embedded Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory database, used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func userKey(userID string) []byte {
	return []byte(keyPrefix + userID)
}

func loadRow(txn *badger.Txn, userID string) (Row, bool, error) {
	row := Row{UserID: userID}
	item, err := txn.Get(userKey(userID))
	if err == badger.ErrKeyNotFound {
		return row, false, nil
	}
	if err != nil {
		return row, false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &row)
	})
	return row, err == nil, err
}

func saveRow(txn *badger.Txn, row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return txn.Set(userKey(row.UserID), data)
}

// GameStarted bumps the user's played counter, creating the row on first
// sight.
func (s *Store) GameStarted(userID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		row, _, err := loadRow(txn, userID)
		if err != nil {
			return err
		}
		row.PlayedGames++
		return saveRow(txn, row)
	})
	if err != nil {
		return errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

// GameWon bumps the user's won counter. A win without a prior started game
// is a caller bug and is rejected so won can never exceed played.
func (s *Store) GameWon(userID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		row, found, err := loadRow(txn, userID)
		if err != nil {
			return err
		}
		if !found || row.GamesWon >= row.PlayedGames {
			return errorsmod.Wrapf(ErrUnknownUser, "user %q", userID)
		}
		row.GamesWon++
		return saveRow(txn, row)
	})
	if errorsmod.IsOf(err, ErrUnknownUser) {
		return err
	}
	if err != nil {
		return errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

// Rows returns every user's counters, best players first: games won
// descending, then user id ascending for a stable order.
func (s *Store) Rows() ([]Row, error) {
	var rows []Row
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row Row
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			})
			if err != nil {
				return err
			}
			if row.UserID == "" {
				row.UserID = strings.TrimPrefix(string(it.Item().Key()), keyPrefix)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GamesWon != rows[j].GamesWon {
			return rows[i].GamesWon > rows[j].GamesWon
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}
