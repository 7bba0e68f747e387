package postgres

import (
	"context"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/logger"
)

// WatchChanges LISTENs on the appointments channel, which a statement
// trigger notifies after every insert, update or delete.
func (s *Store) WatchChanges(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(s.connStr, constants.ListenerMinBackoff, constants.ListenerMaxBackoff,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("Postgres listener event", "event", ev, "error", err)
			}
		})

	if err := listener.Listen(constants.ChangeChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", constants.ChangeChannel, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				// nil after a reconnect; anything may have changed meanwhile
				if n != nil {
					logger.Debug("Appointment change notification", "op", n.Extra)
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	return changes, nil
}
