package users

import "errors"

// ErrNotFound is returned by repositories when a user does not exist.
var ErrNotFound = errors.New("user not found")

// UserRepo stores platform users. The development server backs this with an
// in-memory implementation; a production deployment would back it with a
// database.
type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	List(offset, limit int) ([]*User, error)
}
