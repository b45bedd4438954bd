package contract

import (
	"context"
	"errors"

	"heystack-be/pkg/store"
)

// SessionBackend is the durable side of the session store. Save receives
// the sessions that changed and upserts them; senders absent from the
// argument keep whatever the backend already holds, so several processes
// can share one backend without erasing each other's senders.
type SessionBackend interface {
	Load(ctx context.Context) (map[string]*store.Session, error)
	Save(ctx context.Context, sessions map[string]*store.Session) error
	Close() error
}

// ErrCorruptState is wrapped by backends whose persisted state could not be
// decoded. The session store recovers from it by starting empty.
var ErrCorruptState = errors.New("corrupt session state")
