package server

import (
	"net/http"
	"time"
)

// Config defines fields used for configuring the HTTP server, parsed from
// environment variables
type Config struct {
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	Port        uint16 `env:"PORT" envDefault:"9000"`
	PicturesDir string `env:"PICTURES_DIR" envDefault:"./profile_pics"`
}

// Option alters the http.Server built during NewServer
type Option interface {
	apply(*http.Server)
}

type optionFunc func(s *http.Server)

func (f optionFunc) apply(s *http.Server) { f(s) }

// ReadTimeout sets read timeout for http.Server
func ReadTimeout(d time.Duration) Option {
	return optionFunc(func(s *http.Server) {
		s.ReadTimeout = d
	})
}

// WriteTimeout sets write timeout for http.Server
func WriteTimeout(d time.Duration) Option {
	return optionFunc(func(s *http.Server) {
		s.WriteTimeout = d
	})
}
