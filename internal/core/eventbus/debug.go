package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs every publish at debug level, drops as warnings
// and subscriber panics as errors.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.Observe(Observer{
		Published: func(event Event, payload any) {
			ev := logger.Debug().Str("event", string(event))
			switch p := payload.(type) {
			case TaskCreatedPayload:
				ev = ev.Int64("task_id", p.Task.ID).Str("date", p.Task.Date)
			case TaskDeletedPayload:
				ev = ev.Int64("task_id", p.Task.ID)
			}
			ev.Msg("event fired")
		},
		Dropped: func(event Event, _ any) {
			logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
		},
		Panicked: func(event Event, _ any, recovered any) {
			logger.Error().
				Str("event", string(event)).
				Str("panic", fmt.Sprint(recovered)).
				Msg("subscriber panicked")
		},
	})
}
