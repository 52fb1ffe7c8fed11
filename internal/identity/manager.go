package identity

const (
	ClientIDKey  = "ga_client_id"
	SessionIDKey = "tracking_session_id"
)

// Manager hands out client and session ids, creating them on first read.
//
// Two concurrent first reads may both generate an id; the last write wins.
// Analytics tolerates the lost correlation, so no locking is done.
type Manager struct {
	store Store
}

// NewManager returns a Manager over store. A nil store is allowed: every call
// then returns a freshly generated id that is not persisted.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// GetOrCreateClientID returns the long-lived client id.
func (m *Manager) GetOrCreateClientID() string {
	return m.getOrCreate(ClientIDKey, Persistent, GenerateClientID)
}

// GetOrCreateSessionID returns the id of the current session.
func (m *Manager) GetOrCreateSessionID() string {
	return m.getOrCreate(SessionIDKey, Session, GenerateSessionID)
}

func (m *Manager) getOrCreate(key string, scope Scope, generate func() string) string {
	if m == nil || m.store == nil {
		return generate()
	}
	if v, ok := m.store.Get(key); ok {
		return v
	}
	v := generate()
	m.store.Set(key, v, scope)
	return v
}
