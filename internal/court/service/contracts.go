package service

import (
	"context"

	"courthouse/internal/audit"
)

// AuditPublisher receives one event per state-changing operation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
