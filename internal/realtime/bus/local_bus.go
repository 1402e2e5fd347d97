package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

// localBus delivers messages in-process, for single-replica deployments.
type localBus struct {
	mu       sync.RWMutex
	handlers []func(m realtime.Message)
}

func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(ctx context.Context, msg realtime.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onMsg)
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.handlers = nil
	b.mu.Unlock()
	return nil
}
