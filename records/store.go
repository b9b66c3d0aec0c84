/*
store.go - Persistence interface for agency records

PURPOSE:
  Defines the boundary between the record rules and the database. The
  service never opens connections itself: each request acquires one session
  (a Store bound to a single connection) and passes it into every call.

KEY INTERFACES:
  Store:       Per-request access to clients, policies, documents, agencies
  SessionOpener: Acquires a Store for the duration of fn, releases it after

CONTRACT:
  - Missing ids return an error wrapping ErrNotFound.
  - CreatePolicy/CreateDocument return ErrNotFound when the client is missing.
  - CreateAgency/UpdateAgency return an error wrapping ErrConflict on a
    duplicate name and leave the table unchanged.
  - DeleteClient removes the client's policies and documents as well.
  - Each mutating method is one atomic commit.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - records/store: In-memory for testing

SEE ALSO:
  - service.go: Uses Store
*/
package records

import "context"

// Store is one request's view of the record database.
type Store interface {
	// Clients
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id ClientID) (*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id ClientID) error
	// FindClients matches q case-insensitively against names, ordered by name.
	// An empty q returns every client.
	FindClients(ctx context.Context, q string) ([]Client, error)
	CountClients(ctx context.Context) (int, error)

	// Policies
	CreatePolicy(ctx context.Context, p *Policy) error
	GetPolicy(ctx context.Context, id PolicyID) (*Policy, error)
	UpdatePolicy(ctx context.Context, p *Policy) error
	DeletePolicy(ctx context.Context, id PolicyID) error
	// FindPolicies matches q against policy numbers, ordered by end date.
	FindPolicies(ctx context.Context, q string) ([]PolicyListing, error)
	PoliciesByClient(ctx context.Context, id ClientID) ([]Policy, error)

	// Documents
	CreateDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id DocumentID) (*Document, error)
	RenameDocument(ctx context.Context, id DocumentID, filename string) error
	DeleteDocument(ctx context.Context, id DocumentID) error
	DocumentsByClient(ctx context.Context, id ClientID) ([]Document, error)

	// Agencies
	CreateAgency(ctx context.Context, a *Agency) error
	GetAgency(ctx context.Context, id AgencyID) (*Agency, error)
	// UpdateAgency renames the agency and every policy that named it.
	UpdateAgency(ctx context.Context, a *Agency) error
	DeleteAgency(ctx context.Context, id AgencyID) error
	ListAgencies(ctx context.Context) ([]Agency, error)
}

// SessionOpener hands out per-request stores.
// The store passed to fn must not be used after fn returns.
type SessionOpener interface {
	WithSession(ctx context.Context, fn func(Store) error) error
}
