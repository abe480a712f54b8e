// Package redis implements db.Store on a Redis or Valkey server through rueidis.
//
// Only core commands (hashes, sorted sets, sets, strings, MULTI/EXEC and EVAL) are
// issued, so no server module is required.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/notegraph/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName  = "notegraph"
	readyInitialDelay  = 100 * time.Millisecond
	readyMaxDelay      = 2 * time.Second
	defaultDialTimeout = 5 * time.Second
)

// Config holds connection parameters. Only a standalone server is supported: note
// writes run MULTI/EXEC across keys that a cluster would spread over several slots.
type Config struct {
	Addrs       []string // exactly one standalone server
	Username    string
	Password    string
	DB          int
	ClientName  string        // defaults to "notegraph"
	DialTimeout time.Duration // defaults to 5s
}

// Store implements db.Store via rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the configured server. Client-side caching stays off: every
// read must observe the latest completion and schedule state.
func NewStore(cfg Config) (*Store, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}

	return &Store{client: client}, nil
}

func clientOption(cfg Config) (rueidis.ClientOption, error) {
	switch {
	case len(cfg.Addrs) == 0:
		return rueidis.ClientOption{}, errors.New("redis: at least one address is required")
	case len(cfg.Addrs) > 1:
		return rueidis.ClientOption{}, fmt.Errorf("redis: only a standalone server is supported, got %d addresses", len(cfg.Addrs))
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	return rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ClientName:        name,
		DisableCache:      true,
		ForceSingleClient: true,
		Dialer:            net.Dialer{Timeout: dial},
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.run(ctx, db.OpPing, s.b().Ping().Build())
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with exponential backoff until the server answers or timeout
// expires. The last ping error is reported on failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := readyInitialDelay
	attempts := 0
	var lastErr error
	for {
		attempts++
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("database not ready after %d attempts: %w", attempts, errors.Join(ctx.Err(), lastErr))
		case <-timer.C:
		}
		delay = min(delay*2, readyMaxDelay)
	}
}

// run executes a command whose reply carries no data.
func (s *Store) run(ctx context.Context, op string, cmd rueidis.Completed) error {
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return failed(op, err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// failed wraps a driver error with the command name.
func failed(op string, err error) error {
	return &db.Error{Op: op, Err: err}
}
