package realtime

import (
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/metrics"
)

type handlerFunc func(c Conn, payload map[string]any)

// Dispatcher routes inbound envelopes to relay and presence operations
// through a declarative event table. Unknown events are ignored;
// malformed payloads are logged and dropped. Nothing dispatched here
// may fault the connection or the process.
type Dispatcher struct {
	relay    *RoomRelay
	presence *PresenceRegistry
	logger   logging.Logger
	handlers map[string]handlerFunc
}

func NewDispatcher(relay *RoomRelay, presence *PresenceRegistry, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		relay:    relay,
		presence: presence,
		logger:   logger,
	}

	d.handlers = map[string]handlerFunc{
		EventJoinDesign:  d.handleJoin,
		EventLeaveDesign: d.handleLeave,
	}
	for _, event := range RelayEvents {
		d.handlers[event] = d.relayHandler(event)
	}

	return d
}

// Dispatch routes one inbound envelope. Safe to call with anything a
// client manages to send.
func (d *Dispatcher) Dispatch(c Conn, env *Envelope) {
	handler, ok := d.handlers[env.Event]
	if !ok {
		return
	}

	handler(c, env.Payload)
}

func (d *Dispatcher) handleJoin(c Conn, payload map[string]any) {
	designID, ok := designIDOf(payload)
	if !ok {
		d.dropMalformed(c, EventJoinDesign, payload)
		return
	}

	user := userInfoOf(payload)

	// One current design per connection: switching rooms leaves the
	// previous one first.
	if prev := d.presence.DesignID(c.ID()); prev != "" && prev != designID {
		d.relay.Leave(c, prev)
	}

	d.relay.Join(c, designID)
	d.presence.Set(c.ID(), designID, user)

	d.logger.Info(logging.Realtime, logging.Presence, "connection joined design", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID(),
		logging.DesignID:     designID,
		logging.UserID:       user.UserID,
	})

	d.relay.Broadcast(c, designID, EventUserJoined, map[string]any{
		"designId": designID,
		"user":     user,
	})
}

func (d *Dispatcher) handleLeave(c Conn, payload map[string]any) {
	designID, ok := designIDOf(payload)
	if !ok {
		// Fall back to the connection's current design.
		designID = d.presence.DesignID(c.ID())
	}
	if designID == "" {
		d.dropMalformed(c, EventLeaveDesign, payload)
		return
	}

	d.relay.Leave(c, designID)

	var userID string
	if user, ok := d.presence.User(c.ID()); ok {
		userID = user.UserID
	}

	d.logger.Info(logging.Realtime, logging.Presence, "connection left design", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID(),
		logging.DesignID:     designID,
	})

	d.relay.Broadcast(c, designID, EventUserLeft, map[string]any{
		"designId": designID,
		"userId":   userID,
	})

	if d.presence.DesignID(c.ID()) == designID {
		d.presence.ClearDesign(c.ID())
	}
}

// relayHandler builds the shared validate-then-forward handler bound to
// one event name.
func (d *Dispatcher) relayHandler(event string) handlerFunc {
	return func(c Conn, payload map[string]any) {
		designID, ok := designIDOf(payload)
		if !ok {
			d.dropMalformed(c, event, payload)
			return
		}

		d.relay.Broadcast(c, designID, event, payload)
	}
}

// Disconnect runs the teardown path shared by voluntary close and
// network failure: announce the departure to the room, remove the
// membership, forget the presence record.
func (d *Dispatcher) Disconnect(c Conn) {
	designID := d.presence.DesignID(c.ID())
	if designID != "" {
		var userID string
		if user, ok := d.presence.User(c.ID()); ok {
			userID = user.UserID
		}

		d.logger.Info(logging.Realtime, logging.Connection, "connection disconnected from design", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
			logging.DesignID:     designID,
		})

		d.relay.Broadcast(c, designID, EventUserLeft, map[string]any{
			"designId": designID,
			"userId":   userID,
		})
		d.relay.Leave(c, designID)
	}

	d.presence.Remove(c.ID())
}

func (d *Dispatcher) dropMalformed(c Conn, event string, payload map[string]any) {
	metrics.RealtimeEventsDropped.Inc()
	d.logger.Warn(logging.Realtime, logging.Dispatch, "event dropped: missing or invalid designId", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID(),
		logging.EventName:    event,
		logging.DesignID:     payload["designId"],
	})
}
