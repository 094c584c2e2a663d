package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"studyrooms/internal/storage/pgxlog"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already taken")
	ErrUserNotExist    = errors.New("user does not exist")
	ErrRoomNotExist    = errors.New("room does not exist")
	ErrRoomBadOwner    = errors.New("bad room owner id")
	ErrSessionNotExist = errors.New("session does not exist")
)

// Store defines fields used in db interaction processes
type Store struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// New sets provided zap logger via pgxlog adapter on the pgxpool config,
// applies opts and returns a connected Store instance
func New(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (*Store, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	config.ConnConfig.Logger = pgxlog.New(logger.Desugar())

	for _, opt := range opts {
		opt.apply(config)
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Store{
		logger: logger,
		db:     pool,
	}, nil
}

// Close releases all pooled connections
func (s *Store) Close() {
	s.db.Close()
}

// uniqueConflict maps a unique-constraint violation on the users table to the
// matching sentinel error. Returns nil for anything else.
func uniqueConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		}
	}
	return nil
}

const userColumns = "id, name, username, email, password_hash, picture_file, created_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.PictureFile, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a new user with the default profile picture and returns it.
// Unique-constraint violations surface as ErrUsernameTaken / ErrEmailTaken even
// when a concurrent registration slipped past the existence pre-check.
func (s *Store) CreateUser(ctx context.Context, name, username, email, passwordHash string) (User, error) {
	s.logger.Debugf("Creating user (%s)", username)

	u := User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	sql := `insert into users (name, username, email, password_hash, created_at)
			values ($1, $2, $3, $4, $5)
			returning id, picture_file`
	err := s.db.QueryRow(ctx, sql, u.Name, u.Username, u.Email, u.PasswordHash, u.CreatedAt).
		Scan(&u.ID, &u.PictureFile)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return User{}, conflict
		}
		return User{}, err
	}

	s.logger.Debugf("Created user (%s) with id %d", username, u.ID)

	return u, nil
}

// UserByID returns the user with the given id or ErrUserNotExist.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	sql := "select " + userColumns + " from users where id = $1"
	u, err := scanUser(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return u, nil
}

// UserByUsername returns the user with the given username or ErrUserNotExist.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	sql := "select " + userColumns + " from users where username = $1"
	u, err := scanUser(s.db.QueryRow(ctx, sql, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return u, nil
}

// UsernameExists reports whether any user holds the given username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var i int8
	err := s.db.QueryRow(ctx, "select 1 from users where username = $1", username).Scan(&i)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EmailExists reports whether any user holds the given email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var i int8
	err := s.db.QueryRow(ctx, "select 1 from users where email = $1", email).Scan(&i)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateUser replaces name, username, email and picture_file of the user and
// returns the updated row. Unique conflicts map to the same sentinels as CreateUser.
func (s *Store) UpdateUser(ctx context.Context, id int64, name, username, email, pictureFile string) (User, error) {
	s.logger.Debugf("Updating user (id: %d)", id)

	sql := `update users
			   set name = $2, username = $3, email = $4, picture_file = $5
			 where id = $1
			 returning ` + userColumns
	u, err := scanUser(s.db.QueryRow(ctx, sql, id, name, username, email, pictureFile))
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return User{}, conflict
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return u, nil
}
