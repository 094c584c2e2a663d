package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyrooms/internal/auth"
	"studyrooms/internal/storage"
)

// fakeStore is an in-memory Store with the same conflict semantics as the
// Postgres one.
type fakeStore struct {
	users  map[int64]storage.User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]storage.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, name, username, email, passwordHash string) (storage.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return storage.User{}, storage.ErrUsernameTaken
		}
	}
	for _, u := range f.users {
		if u.Email == email {
			return storage.User{}, storage.ErrEmailTaken
		}
	}
	f.nextID++
	u := storage.User{
		ID:           f.nextID,
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		PictureFile:  DefaultPicture,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) UserByID(_ context.Context, id int64) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotExist
	}
	return u, nil
}

func (f *fakeStore) UserByUsername(_ context.Context, username string) (storage.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return storage.User{}, storage.ErrUserNotExist
}

func (f *fakeStore) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id int64, name, username, email, pictureFile string) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotExist
	}
	for _, other := range f.users {
		if other.ID == id {
			continue
		}
		if other.Username == username {
			return storage.User{}, storage.ErrUsernameTaken
		}
		if other.Email == email {
			return storage.User{}, storage.ErrEmailTaken
		}
	}
	u.Name, u.Username, u.Email, u.PictureFile = name, username, email, pictureFile
	f.users[id] = u
	return u, nil
}

type fakePictures struct {
	stored string
	err    error
}

func (f *fakePictures) Store(data []byte, ext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.stored, nil
}

func newDirectory(t *testing.T, store Store, pictures PictureStore) *Directory {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return NewDirectory(logger.Sugar(), store, pictures)
}

func aliceRegistration() Registration {
	return Registration{
		Name:     "Alice",
		Username: "alice01",
		Email:    "a@x.com",
		Password: "pass-123",
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	user, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, DefaultPicture, user.PictureFile)
	require.NotEqual(t, "pass-123", user.PasswordHash)
	require.True(t, auth.CheckPassword("pass-123", user.PasswordHash))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := newDirectory(t, store, &fakePictures{})

	_, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	dup := aliceRegistration()
	dup.Email = "other@x.com"
	_, err = d.Register(context.Background(), dup)
	require.ErrorIs(t, err, storage.ErrUsernameTaken)
	require.Len(t, store.users, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := newDirectory(t, store, &fakePictures{})

	_, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	dup := aliceRegistration()
	dup.Username = "bob02"
	_, err = d.Register(context.Background(), dup)
	require.ErrorIs(t, err, storage.ErrEmailTaken)
	require.Len(t, store.users, 1)
}

func TestRegisterDuplicateBothReportsUsernameFirst(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	_, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	_, err = d.Register(context.Background(), aliceRegistration())
	require.ErrorIs(t, err, storage.ErrUsernameTaken)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	registered, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	user, err := d.Authenticate(context.Background(), "alice01", "pass-123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateIndistinguishableFailures(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	_, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	_, wrongPassword := d.Authenticate(context.Background(), "alice01", "nope")
	_, unknownUser := d.Authenticate(context.Background(), "mallory9", "pass-123")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	require.Equal(t, wrongPassword, unknownUser)
}

func TestUpdateProfileUnchangedFieldsNotAConflict(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	user, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	updated, err := d.UpdateProfile(context.Background(), ProfileUpdate{
		UserID:   user.ID,
		Name:     "Alice B",
		Username: user.Username,
		Email:    user.Email,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice B", updated.Name)
	require.Equal(t, user.Username, updated.Username)
}

func TestUpdateProfileCollidesWithOtherUser(t *testing.T) {
	t.Parallel()

	d := newDirectory(t, newFakeStore(), &fakePictures{})

	_, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	bob, err := d.Register(context.Background(), Registration{
		Name:     "Bob",
		Username: "bob02",
		Email:    "b@x.com",
		Password: "pass-456",
	})
	require.NoError(t, err)

	_, err = d.UpdateProfile(context.Background(), ProfileUpdate{
		UserID:   bob.ID,
		Name:     bob.Name,
		Username: "alice01",
		Email:    bob.Email,
	})
	require.ErrorIs(t, err, storage.ErrUsernameTaken)

	_, err = d.UpdateProfile(context.Background(), ProfileUpdate{
		UserID:   bob.ID,
		Name:     bob.Name,
		Username: bob.Username,
		Email:    "a@x.com",
	})
	require.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestUpdateProfileStoresPicture(t *testing.T) {
	t.Parallel()

	pictures := &fakePictures{stored: "c0ffee.png"}
	d := newDirectory(t, newFakeStore(), pictures)

	user, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	updated, err := d.UpdateProfile(context.Background(), ProfileUpdate{
		UserID:   user.ID,
		Name:     user.Name,
		Username: user.Username,
		Email:    user.Email,
		Picture:  &PictureUpload{Data: []byte{1, 2, 3}, Ext: ".png"},
	})
	require.NoError(t, err)
	require.Equal(t, "c0ffee.png", updated.PictureFile)
}

func TestUpdateProfilePictureFailurePropagates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := newDirectory(t, store, &fakePictures{err: ErrUnsupportedPicture})

	user, err := d.Register(context.Background(), aliceRegistration())
	require.NoError(t, err)

	_, err = d.UpdateProfile(context.Background(), ProfileUpdate{
		UserID:   user.ID,
		Name:     "Changed",
		Username: user.Username,
		Email:    user.Email,
		Picture:  &PictureUpload{Data: []byte{1}, Ext: ".gif"},
	})
	require.ErrorIs(t, err, ErrUnsupportedPicture)

	// the failed update must not have been applied partially
	unchanged, err := d.ByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Name, unchanged.Name)
}
