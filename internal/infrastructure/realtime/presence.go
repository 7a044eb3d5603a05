package realtime

import "sync"

type presenceRecord struct {
	designID string
	user     *UserInfo
}

// PresenceRegistry is a side-table from connection ID to the room key
// and user identity that connection last announced. It never emits
// events; it only answers lookups for the dispatcher.
type PresenceRegistry struct {
	mu      sync.RWMutex
	records map[string]*presenceRecord
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		records: make(map[string]*presenceRecord),
	}
}

// Set associates a room key and user descriptor with the connection,
// overwriting any prior association.
func (p *PresenceRegistry) Set(connID, designID string, user UserInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records[connID] = &presenceRecord{
		designID: designID,
		user:     &user,
	}
}

func (p *PresenceRegistry) DesignID(connID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if rec, ok := p.records[connID]; ok {
		return rec.designID
	}
	return ""
}

func (p *PresenceRegistry) User(connID string) (UserInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if rec, ok := p.records[connID]; ok && rec.user != nil {
		return *rec.user, true
	}
	return UserInfo{}, false
}

// ClearDesign drops the stored room key but keeps the user descriptor,
// so a late leave without an explicit key can still name the user.
func (p *PresenceRegistry) ClearDesign(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rec, ok := p.records[connID]; ok {
		rec.designID = ""
	}
}

// Remove forgets the connection entirely. Called on final disconnect.
func (p *PresenceRegistry) Remove(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.records, connID)
}
