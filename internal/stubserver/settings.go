package stubserver

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHost is the loopback interface used when no override is given.
	DefaultHost = "127.0.0.1"
	// DefaultPort matches the original review service's port.
	DefaultPort = 8000
	// DefaultPOAmount is the mock purchase-order amount invoices are matched
	// against.
	DefaultPOAmount = 100.0
	// DefaultTolerancePct is the two-way match tolerance in percent.
	DefaultTolerancePct = 5.0
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the stub review service.
type Settings struct {
	Host         string
	Port         int
	POAmount     float64
	TolerancePct float64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultSettings returns settings with environment overrides applied.
func DefaultSettings() Settings {
	settings := Settings{
		Host:         DefaultHost,
		Port:         DefaultPort,
		POAmount:     DefaultPOAmount,
		TolerancePct: DefaultTolerancePct,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
	settings.applyEnvOverrides()
	settings.normalize()
	return settings
}

func (s *Settings) applyEnvOverrides() {
	if host := strings.TrimSpace(os.Getenv("REVIEWDESK_STUB_HOST")); host != "" {
		s.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("REVIEWDESK_STUB_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			s.Port = parsed
		}
	}
}

func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if !isValidPort(s.Port) && s.Port != 0 {
		s.Port = DefaultPort
	}
	if s.POAmount <= 0 {
		s.POAmount = DefaultPOAmount
	}
	if s.TolerancePct <= 0 {
		s.TolerancePct = DefaultTolerancePct
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
