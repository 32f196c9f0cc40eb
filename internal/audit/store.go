package audit

import "context"

// Store persists the audit trail. The in-memory store is the only
// implementation; events do not survive a restart.
type Store interface {
	Append(ctx context.Context, event Event) error
	Reader
}
