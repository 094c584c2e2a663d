package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"go.uber.org/zap"

	"studyrooms/internal/storage"
	"studyrooms/internal/users"
)

// UserDirectory is the account subsystem as seen from the handlers.
type UserDirectory interface {
	Register(ctx context.Context, reg users.Registration) (storage.User, error)
	Authenticate(ctx context.Context, username, password string) (storage.User, error)
	UpdateProfile(ctx context.Context, upd users.ProfileUpdate) (storage.User, error)
	ByUsername(ctx context.Context, username string) (storage.User, error)
	ByID(ctx context.Context, id int64) (storage.User, error)
}

// SessionManager establishes and resolves request identities.
type SessionManager interface {
	Start(ctx context.Context, user storage.User) (string, error)
	Resolve(ctx context.Context, token string) (*storage.User, error)
	End(ctx context.Context, token string) error
}

// RoomStore is the room repository as seen from the handlers.
type RoomStore interface {
	CreateRoom(ctx context.Context, ownerID int64, topic, description string) (storage.Room, error)
	RoomByID(ctx context.Context, id int64) (storage.Room, error)
	UpdateRoom(ctx context.Context, id int64, topic, description string) (storage.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	Rooms(ctx context.Context, page int) (storage.RoomPage, error)
	RoomsByOwner(ctx context.Context, ownerID int64, page int) (storage.RoomPage, error)
}

// App bundles the collaborators every handler needs. It is constructed once at
// startup and injected; there is no ambient global state.
type App struct {
	Users    UserDirectory
	Sessions SessionManager
	Rooms    RoomStore
}

// Server defines fields used in HTTP processing
type Server struct {
	logger     *zap.SugaredLogger
	httpServer *http.Server
	h          *handler
}

// NewServer builds the route table over the provided App and returns a Server
// ready to Start
func NewServer(logger *zap.SugaredLogger, cfg Config, app App, opts ...Option) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	h := &handler{
		logger:    logger,
		users:     app.Users,
		sessions:  app.Sessions,
		rooms:     app.Rooms,
		templates: templates,
	}

	httpServer := &http.Server{
		Addr:    cfg.Host + ":" + strconv.FormatUint(uint64(cfg.Port), 10),
		Handler: logRequests(h.routes(cfg.PicturesDir), logger.Desugar()),
	}

	for _, opt := range opts {
		opt.apply(httpServer)
	}

	return &Server{
		logger:     logger,
		httpServer: httpServer,
		h:          h,
	}, nil
}

// routes registers every endpoint on a fresh mux. Protected routes are wrapped
// in the authentication guard; ownership checks live in the room handlers.
func (h *handler) routes(picturesDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.home)
	mux.HandleFunc("/about", h.about)
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/user_rooms/", h.userRooms)

	mux.Handle("/account", h.requireAuth(h.account))
	mux.Handle("/profile/", h.requireAuth(h.profile))
	mux.Handle("/room/", h.requireAuth(h.room))
	mux.Handle("/create_room", h.requireAuth(h.createRoom))
	mux.Handle("/update_room/", h.requireAuth(h.updateRoom))
	mux.Handle("/delete_room/", h.requireAuth(h.deleteRoom))

	mux.Handle("/profile_pics/", http.StripPrefix("/profile_pics/", http.FileServer(http.Dir(picturesDir))))

	return mux
}

// Start calls ListenAndServe on the http.Server instance inside Server struct
// and implements graceful shutdown via goroutine waiting for signals
func (s *Server) Start() error {
	idleConnsClosed := make(chan struct{})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		s.logger.Info("Shutting down HTTP server")

		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Errorf("srv.Shutdown: %v", err)
		}
		s.logger.Info("HTTP server is stopped")

		close(idleConnsClosed)
	}()

	s.logger.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("s.httpServer.ListenAndServe: %v", err)
	}

	<-idleConnsClosed

	return nil
}
