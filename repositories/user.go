//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/errors"
)

type IUserRepository interface {
	CreateUser(username, email, displayName, hashedPassword string) (User, error)
	GetByEmail(email string) (User, error)
	GetByUsername(username string) (User, error)
	GetByID(id string) (User, error)
	TouchLastLogin(id string, at time.Time) error
}

// User is the stored account record. Accounts are the only persistent
// state of the system; messages and presence never touch disk.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// UserRepository persists accounts in BadgerDB. The record lives under the
// id key; email and username keys are uniqueness indexes pointing at the
// id, all written in one transaction.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func idKey(id string) []byte         { return []byte("user:id:" + id) }
func emailKey(email string) []byte   { return []byte("user:email:" + email) }
func nameKey(username string) []byte { return []byte("user:name:" + username) }

// CreateUser persists a new account. Username and email are both unique;
// a clash on either returns ErrUserAlreadyExists.
func (u *UserRepository) CreateUser(username, email, displayName, hashedPassword string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(nameKey(username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(idKey(user.ID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(nameKey(username), []byte(user.ID))
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetByEmail(email string) (User, error) {
	return u.getByIndex(emailKey(email))
}

func (u *UserRepository) GetByUsername(username string) (User, error) {
	return u.getByIndex(nameKey(username))
}

func (u *UserRepository) GetByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		return readUser(txn, idKey(id), &user)
	})
	if err != nil {
		return User{}, mapNotFound(err)
	}
	return user, nil
}

// TouchLastLogin stamps a successful login on the stored record.
func (u *UserRepository) TouchLastLogin(id string, at time.Time) error {
	return u.db.Update(func(txn *badger.Txn) error {
		var user User
		if err := readUser(txn, idKey(id), &user); err != nil {
			return mapNotFound(err)
		}
		user.LastLogin = &at
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(idKey(id), data)
	})
}

func (u *UserRepository) getByIndex(key []byte) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return readUser(txn, idKey(string(id)), &user)
	})
	if err != nil {
		return User{}, mapNotFound(err)
	}
	return user, nil
}

func readUser(txn *badger.Txn, key []byte, out *User) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func mapNotFound(err error) error {
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrUserNotFound
	}
	return err
}
