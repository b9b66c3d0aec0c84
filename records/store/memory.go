// Package store provides records.Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samvbk/insurance-dashboard/records"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory mirrors the SQLite store's rules: cascading client deletes, unique
// agency names, agency renames following through to policies.
type Memory struct {
	mu        sync.RWMutex
	nextID    int64
	clients   map[records.ClientID]records.Client
	policies  map[records.PolicyID]records.Policy
	documents map[records.DocumentID]records.Document
	agencies  map[records.AgencyID]records.Agency
}

func NewMemory() *Memory {
	return &Memory{
		clients:   make(map[records.ClientID]records.Client),
		policies:  make(map[records.PolicyID]records.Policy),
		documents: make(map[records.DocumentID]records.Document),
		agencies:  make(map[records.AgencyID]records.Agency),
	}
}

var (
	_ records.Store         = (*Memory)(nil)
	_ records.SessionOpener = (*Memory)(nil)
)

// WithSession runs fn against the memory store itself.
func (m *Memory) WithSession(_ context.Context, fn func(records.Store) error) error {
	return fn(m)
}

func (m *Memory) newID() int64 {
	m.nextID++
	return m.nextID
}

// =============================================================================
// CLIENTS
// =============================================================================

func (m *Memory) CreateClient(_ context.Context, c *records.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = records.ClientID(m.newID())
	m.clients[c.ID] = *c
	return nil
}

func (m *Memory) GetClient(_ context.Context, id records.ClientID) (*records.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, records.NewNotFound("client", int64(id))
	}
	return &c, nil
}

func (m *Memory) UpdateClient(_ context.Context, c *records.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return records.NewNotFound("client", int64(c.ID))
	}
	m.clients[c.ID] = *c
	return nil
}

// DeleteClient removes the client with its policies and documents.
func (m *Memory) DeleteClient(_ context.Context, id records.ClientID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return records.NewNotFound("client", int64(id))
	}
	delete(m.clients, id)
	for pid, p := range m.policies {
		if p.ClientID == id {
			delete(m.policies, pid)
		}
	}
	for did, d := range m.documents {
		if d.ClientID == id {
			delete(m.documents, did)
		}
	}
	return nil
}

func (m *Memory) FindClients(_ context.Context, q string) ([]records.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q = strings.ToLower(q)
	var result []records.Client
	for _, c := range m.clients {
		if strings.Contains(strings.ToLower(c.Name), q) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) CountClients(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients), nil
}

// =============================================================================
// POLICIES
// =============================================================================

func (m *Memory) CreatePolicy(_ context.Context, p *records.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[p.ClientID]; !ok {
		return records.NewNotFound("client", int64(p.ClientID))
	}
	p.ID = records.PolicyID(m.newID())
	m.policies[p.ID] = *p
	return nil
}

func (m *Memory) GetPolicy(_ context.Context, id records.PolicyID) (*records.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.policies[id]
	if !ok {
		return nil, records.NewNotFound("policy", int64(id))
	}
	return &p, nil
}

func (m *Memory) UpdatePolicy(_ context.Context, p *records.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.policies[p.ID]
	if !ok {
		return records.NewNotFound("policy", int64(p.ID))
	}
	updated := *p
	updated.ClientID = existing.ClientID
	m.policies[p.ID] = updated
	return nil
}

func (m *Memory) DeletePolicy(_ context.Context, id records.PolicyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.policies[id]; !ok {
		return records.NewNotFound("policy", int64(id))
	}
	delete(m.policies, id)
	return nil
}

func (m *Memory) FindPolicies(_ context.Context, q string) ([]records.PolicyListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q = strings.ToLower(q)
	var result []records.PolicyListing
	for _, p := range m.policies {
		c, ok := m.clients[p.ClientID]
		if !ok || !strings.Contains(strings.ToLower(p.PolicyNumber), q) {
			continue
		}
		result = append(result, records.PolicyListing{Policy: p, ClientName: c.Name})
	}
	sort.Slice(result, func(i, j int) bool {
		return records.EndDateLess(result[i].Policy, result[j].Policy)
	})
	return result, nil
}

func (m *Memory) PoliciesByClient(_ context.Context, id records.ClientID) ([]records.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []records.Policy
	for _, p := range m.policies {
		if p.ClientID == id {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return records.EndDateLess(result[i], result[j])
	})
	return result, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (m *Memory) CreateDocument(_ context.Context, d *records.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[d.ClientID]; !ok {
		return records.NewNotFound("client", int64(d.ClientID))
	}
	d.ID = records.DocumentID(m.newID())
	m.documents[d.ID] = *d
	return nil
}

func (m *Memory) GetDocument(_ context.Context, id records.DocumentID) (*records.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, records.NewNotFound("document", int64(id))
	}
	return &d, nil
}

func (m *Memory) RenameDocument(_ context.Context, id records.DocumentID, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return records.NewNotFound("document", int64(id))
	}
	d.Filename = filename
	m.documents[id] = d
	return nil
}

func (m *Memory) DeleteDocument(_ context.Context, id records.DocumentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return records.NewNotFound("document", int64(id))
	}
	delete(m.documents, id)
	return nil
}

func (m *Memory) DocumentsByClient(_ context.Context, id records.ClientID) ([]records.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []records.Document
	for _, d := range m.documents {
		if d.ClientID == id {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Filename != result[j].Filename {
			return result[i].Filename < result[j].Filename
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// AGENCIES
// =============================================================================

func (m *Memory) CreateAgency(_ context.Context, a *records.Agency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.agencyNameTaken(a.Name, 0) {
		return &records.ConflictError{Name: a.Name}
	}
	a.ID = records.AgencyID(m.newID())
	m.agencies[a.ID] = *a
	return nil
}

func (m *Memory) GetAgency(_ context.Context, id records.AgencyID) (*records.Agency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agencies[id]
	if !ok {
		return nil, records.NewNotFound("agency", int64(id))
	}
	return &a, nil
}

func (m *Memory) UpdateAgency(_ context.Context, a *records.Agency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.agencies[a.ID]
	if !ok {
		return records.NewNotFound("agency", int64(a.ID))
	}
	if m.agencyNameTaken(a.Name, a.ID) {
		return &records.ConflictError{Name: a.Name}
	}
	m.agencies[a.ID] = *a
	for id, p := range m.policies {
		if p.Agency == old.Name {
			p.Agency = a.Name
			m.policies[id] = p
		}
	}
	return nil
}

func (m *Memory) DeleteAgency(_ context.Context, id records.AgencyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agencies[id]; !ok {
		return records.NewNotFound("agency", int64(id))
	}
	delete(m.agencies, id)
	return nil
}

func (m *Memory) ListAgencies(_ context.Context) ([]records.Agency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]records.Agency, 0, len(m.agencies))
	for _, a := range m.agencies {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) agencyNameTaken(name string, except records.AgencyID) bool {
	for id, a := range m.agencies {
		if id != except && a.Name == name {
			return true
		}
	}
	return false
}
