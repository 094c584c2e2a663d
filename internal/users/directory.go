// Package users implements the account directory: registration with uniqueness
// checks, credential verification and profile updates.
package users

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"studyrooms/internal/auth"
	"studyrooms/internal/storage"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike; callers must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the username does not resolve, so that
// failed logins take roughly the same time either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Store is the subset of the storage layer the directory needs.
type Store interface {
	CreateUser(ctx context.Context, name, username, email, passwordHash string) (storage.User, error)
	UserByID(ctx context.Context, id int64) (storage.User, error)
	UserByUsername(ctx context.Context, username string) (storage.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, id int64, name, username, email, pictureFile string) (storage.User, error)
}

// PictureStore persists an uploaded profile picture and returns the stored
// file name. Resizing and format conversion are its business, not ours.
type PictureStore interface {
	Store(data []byte, ext string) (string, error)
}

// Registration carries the fields of a new account request.
type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
}

// PictureUpload is a raw uploaded picture payload.
type PictureUpload struct {
	Data []byte
	Ext  string
}

// ProfileUpdate carries an account update; Picture is optional.
type ProfileUpdate struct {
	UserID   int64
	Name     string
	Username string
	Email    string
	Picture  *PictureUpload
}

// Directory is the uniqueness-enforcing account repository.
type Directory struct {
	logger   *zap.SugaredLogger
	store    Store
	pictures PictureStore
}

func NewDirectory(logger *zap.SugaredLogger, store Store, pictures PictureStore) *Directory {
	return &Directory{
		logger:   logger,
		store:    store,
		pictures: pictures,
	}
}

// Register creates a new account. The username existence check runs before the
// email one, so a request failing both surfaces the username conflict first.
// The storage layer repeats both checks as hard constraints, which closes the
// race between two concurrent registrations.
func (d *Directory) Register(ctx context.Context, reg Registration) (storage.User, error) {
	taken, err := d.store.UsernameExists(ctx, reg.Username)
	if err != nil {
		return storage.User{}, err
	}
	if taken {
		return storage.User{}, storage.ErrUsernameTaken
	}

	taken, err = d.store.EmailExists(ctx, reg.Email)
	if err != nil {
		return storage.User{}, err
	}
	if taken {
		return storage.User{}, storage.ErrEmailTaken
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return storage.User{}, err
	}

	user, err := d.store.CreateUser(ctx, reg.Name, reg.Username, reg.Email, hash)
	if err != nil {
		return storage.User{}, err
	}

	d.logger.Infof("Registered user %q (id: %d)", user.Username, user.ID)

	return user, nil
}

// Authenticate verifies username and password. An unknown username and a wrong
// password both come back as ErrInvalidCredentials; a dummy hash comparison
// keeps the unknown-username path from returning early.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (storage.User, error) {
	user, err := d.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			auth.CheckPassword(password, dummyHash)
			return storage.User{}, ErrInvalidCredentials
		}
		return storage.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return storage.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateProfile applies an account update. Username and email are checked for
// conflicts only when they differ from the user's current values, so a user may
// resubmit an unchanged field. A supplied picture is stored first and its
// failure aborts the whole update.
func (d *Directory) UpdateProfile(ctx context.Context, upd ProfileUpdate) (storage.User, error) {
	current, err := d.store.UserByID(ctx, upd.UserID)
	if err != nil {
		return storage.User{}, err
	}

	if upd.Username != current.Username {
		taken, err := d.store.UsernameExists(ctx, upd.Username)
		if err != nil {
			return storage.User{}, err
		}
		if taken {
			return storage.User{}, storage.ErrUsernameTaken
		}
	}

	if upd.Email != current.Email {
		taken, err := d.store.EmailExists(ctx, upd.Email)
		if err != nil {
			return storage.User{}, err
		}
		if taken {
			return storage.User{}, storage.ErrEmailTaken
		}
	}

	pictureFile := current.PictureFile
	if upd.Picture != nil {
		pictureFile, err = d.pictures.Store(upd.Picture.Data, upd.Picture.Ext)
		if err != nil {
			return storage.User{}, err
		}
	}

	user, err := d.store.UpdateUser(ctx, upd.UserID, upd.Name, upd.Username, upd.Email, pictureFile)
	if err != nil {
		return storage.User{}, err
	}

	d.logger.Infof("Updated profile of user %q (id: %d)", user.Username, user.ID)

	return user, nil
}

// ByUsername looks an account up by its public profile key.
func (d *Directory) ByUsername(ctx context.Context, username string) (storage.User, error) {
	return d.store.UserByUsername(ctx, username)
}

// ByID looks an account up by its immutable numeric id.
func (d *Directory) ByID(ctx context.Context, id int64) (storage.User, error) {
	return d.store.UserByID(ctx, id)
}
