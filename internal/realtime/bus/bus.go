package bus

import (
	"context"

	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

// Bus fans realtime messages out to every API replica.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
