package realtime

// Inbound event catalog. join-design and leave-design mutate membership
// and presence; the relay events are forwarded verbatim to the rest of
// the room. Adding a relay event is a one-line change to RelayEvents.
const (
	EventJoinDesign  = "join-design"
	EventLeaveDesign = "leave-design"

	EventElementCreate = "element-create"
	EventElementUpdate = "element-update"
	EventElementDelete = "element-delete"
	EventLayerReorder  = "layer-reorder"
	EventCursorMove    = "cursor-move"
	EventCommentAdded  = "comment-added"
)

// Outbound events emitted by the relay itself.
const (
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
)

// RelayEvents are pure pass-through: the dispatcher validates the
// designId and re-broadcasts the payload untouched.
var RelayEvents = []string{
	EventElementCreate,
	EventElementUpdate,
	EventElementDelete,
	EventLayerReorder,
	EventCursorMove,
	EventCommentAdded,
}

// Envelope is the wire framing for every message in either direction.
type Envelope struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// UserInfo is the client-declared identity announced in a join payload.
// It is presentation-only and never checked against the auth layer.
type UserInfo struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
}

// Conn is the connection surface the relay and dispatcher depend on.
// Send must never block; implementations drop on backpressure.
type Conn interface {
	ID() string
	Send(env *Envelope)
}

// designIDOf extracts a usable room key from a payload. Only a
// non-empty string qualifies; anything else means the event is dropped.
func designIDOf(payload map[string]any) (string, bool) {
	raw, ok := payload["designId"]
	if !ok {
		return "", false
	}

	id, ok := raw.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

// userInfoOf decodes the join payload's userInfo mapping. Missing or
// malformed fields degrade to zero values; the relay does not insist on
// a verified identity.
func userInfoOf(payload map[string]any) UserInfo {
	raw, ok := payload["userInfo"].(map[string]any)
	if !ok {
		return UserInfo{}
	}

	var info UserInfo
	if v, ok := raw["userId"].(string); ok {
		info.UserID = v
	}
	if v, ok := raw["name"].(string); ok {
		info.Name = v
	}
	if v, ok := raw["color"].(string); ok {
		info.Color = v
	}

	return info
}
