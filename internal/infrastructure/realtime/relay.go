package realtime

import (
	"sync"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/metrics"
)

type room struct {
	members map[string]Conn
}

// RoomRelay maps design IDs to the set of connections watching that
// design. Rooms exist only through membership: the first join creates
// one, removing the last member deletes it.
type RoomRelay struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger logging.Logger
}

func NewRoomRelay(logger logging.Logger) *RoomRelay {
	return &RoomRelay{
		rooms:  make(map[string]*room),
		logger: logger,
	}
}

// Join adds the connection to the room, creating it if needed.
// Joining a room the connection is already in is a no-op.
func (r *RoomRelay) Join(c Conn, designID string) {
	if designID == "" {
		r.logger.Warn(logging.Realtime, logging.Broadcast, "join dropped: empty design id", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
		})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[designID]
	if !ok {
		rm = &room{members: make(map[string]Conn)}
		r.rooms[designID] = rm
		metrics.RealtimeRooms.Inc()
	}

	rm.members[c.ID()] = c
}

// Leave removes the connection from the room. Leaving a room the
// connection never joined is a no-op, not an error.
func (r *RoomRelay) Leave(c Conn, designID string) {
	if designID == "" {
		r.logger.Warn(logging.Realtime, logging.Broadcast, "leave dropped: empty design id", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
		})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[designID]
	if !ok {
		return
	}

	if _, ok := rm.members[c.ID()]; !ok {
		return
	}

	delete(rm.members, c.ID())
	if len(rm.members) == 0 {
		delete(r.rooms, designID)
		metrics.RealtimeRooms.Dec()
	}
}

// Broadcast delivers the event to every member of the room except the
// origin connection. An unknown or empty room is a silent no-op.
func (r *RoomRelay) Broadcast(origin Conn, designID, event string, payload map[string]any) {
	if designID == "" {
		r.logger.Warn(logging.Realtime, logging.Broadcast, "broadcast dropped: empty design id", map[logging.ExtraKey]any{
			logging.ConnectionID: origin.ID(),
			logging.EventName:    event,
		})
		return
	}

	r.mu.RLock()
	rm, ok := r.rooms[designID]
	if !ok {
		r.mu.RUnlock()
		return
	}

	receivers := make([]Conn, 0, len(rm.members))
	for id, member := range rm.members {
		if id == origin.ID() {
			continue
		}
		receivers = append(receivers, member)
	}
	r.mu.RUnlock()

	if len(receivers) == 0 {
		return
	}

	env := &Envelope{Event: event, Payload: payload}
	for _, member := range receivers {
		member.Send(env)
	}

	metrics.RealtimeEventsRelayed.WithLabelValues(event).Inc()
}

// Members reports the current membership size of a room.
func (r *RoomRelay) Members(designID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rm, ok := r.rooms[designID]; ok {
		return len(rm.members)
	}
	return 0
}

// Rooms reports the number of live rooms.
func (r *RoomRelay) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
