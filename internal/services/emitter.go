package services

import (
	"context"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
	"github.com/adaosilva/imoveis-backend/internal/realtime/bus"
)

type Emitter interface {
	Emit(ctx context.Context, msg realtime.Message)
}

type HubEmitter struct{ Hub *realtime.Hub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.Message) {
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes through the realtime bus so every replica's hub
// receives the message. Publish failures are logged and swallowed.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.Message) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("realtime publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}

// emitTo sends the same event to each channel. A nil emitter is a no-op.
func emitTo(ctx context.Context, e Emitter, event realtime.Event, data any, channels ...string) {
	if e == nil {
		return
	}
	for _, ch := range channels {
		if ch == "" {
			continue
		}
		e.Emit(ctx, realtime.Message{Channel: ch, Event: event, Data: data})
	}
}
