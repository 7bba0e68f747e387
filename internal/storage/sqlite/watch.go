package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/logger"
)

// WatchChanges polls PRAGMA data_version on a dedicated connection. The
// value moves whenever any other connection commits to the database file,
// which covers other apptbook processes.
func (s *Store) WatchChanges(ctx context.Context) (<-chan struct{}, error) {
	return s.watchChanges(ctx, constants.DataVersionPoll)
}

func (s *Store) watchChanges(ctx context.Context, interval time.Duration) (<-chan struct{}, error) {
	// A separate pool so the pinned connection never starves writers
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open watch connection: %w", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to pin watch connection: %w", err)
	}

	last, err := dataVersion(ctx, conn)
	if err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("failed to read data_version: %w", err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer db.Close()
		defer conn.Close()
		defer close(changes)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v, err := dataVersion(ctx, conn)
				if err != nil {
					if ctx.Err() == nil {
						logger.Warn("Failed to poll data_version", "error", err)
					}
					continue
				}
				if v == last {
					continue
				}
				last = v
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	return changes, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}
