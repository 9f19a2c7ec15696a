package observable

import (
	"context"

	"go.uber.org/zap"
)

// LogObserver writes every event to logger at debug level
func LogObserver(logger *zap.Logger) Observer {
	return ObserverFunc(func(ctx context.Context, ev Event) {
		fields := []zap.Field{zap.String("event", string(ev.Type))}
		switch ev.Type {
		case EventClientsLoaded:
			fields = append(fields, zap.Int("count", len(ev.Clients())))
		case EventClientDeleted:
			fields = append(fields, zap.Stringer("id", ev.ID()))
		default:
			if c := ev.Client(); c != nil {
				fields = append(fields, zap.Stringer("id", c.ID))
			}
		}
		logger.Debug("repository event", fields...)
	})
}
