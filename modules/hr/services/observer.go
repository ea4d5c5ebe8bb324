package services

import (
	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pulse"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
	"github.com/mavis-digital/hrbot/pkg/metrics"
)

// ObserveSync subscribes the counters to the synchronizer event stream.
func ObserveSync(bus eventbus.EventBus, m *metrics.Sync) {
	bus.Subscribe(func(pivot.CreatedEvent) { m.PivotCreated.Inc() })
	bus.Subscribe(func(pivot.UpdatedEvent) { m.PivotUpdated.Inc() })
	bus.Subscribe(func(pivot.ArchivedEvent) { m.PivotArchived.Inc() })
	bus.Subscribe(func(pivot.SyncErrorEvent) { m.SyncErrors.Inc() })
	bus.Subscribe(func(access.GrantedEvent) { m.AuthCreated.Inc() })
	bus.Subscribe(func(ev access.RevokedEvent) { m.AuthDeleted.Add(float64(ev.Count)) })
	bus.Subscribe(func(pulse.ScheduledEvent) { m.PulseCreated.Inc() })
}
