/*
Package sqlite provides a SQLite-backed implementation of records.Store.

PURPOSE:
  The agency's only persistence layer: clients, policies, documents and
  agencies in one SQLite file.

SESSIONS:
  Store owns the *sql.DB pool. Requests never touch the pool directly; they
  call WithSession, which pins one *sql.Conn for the duration of the callback
  and releases it on every exit path. All reads and writes of a request,
  including the document delete path, go through that session.

KEY TABLES:
  clients:   root records, display-form dates
  policies:  client_id -> clients ON DELETE CASCADE, premium as decimal text
  documents: client_id -> clients ON DELETE CASCADE, label + storage key
  agencies:  name UNIQUE

SEARCH:
  Connections are opened through the "sqlite3_records" driver, which adds a
  fold() function and a FOLD collation built on strings.ToLower. SQLite's own
  LIKE and NOCASE only fold ASCII, which would miss names such as "Émile".

CONSTRAINTS:
  Foreign keys are enabled per connection (_foreign_keys=on). Constraint
  failures are classified with the driver's extended error codes:
  - UNIQUE on agencies.name  -> records.ConflictError
  - FOREIGN KEY on client_id -> records.NotFoundError

MIGRATION:
  Schema lives in migrations/*.sql, embedded and applied with golang-migrate
  on New().

USAGE:
  store, err := sqlite.New("./data/records.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.WithSession(ctx, func(st records.Store) error {
      _, err := svc.CreateClient(ctx, st, in)
      return err
  })

SEE ALSO:
  - records/store.go: Interface definitions
  - records/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
	"github.com/samvbk/insurance-dashboard/records"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrations embed.FS

const driverName = "sqlite3_records"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("fold", strings.ToLower, true); err != nil {
				return err
			}
			return conn.RegisterCollation("FOLD", compareFolded)
		},
	})
}

func compareFolded(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Store implements records.SessionOpener using SQLite.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open(driverName, dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewFromDB wraps an already migrated database handle.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return err
	}
	// m.Close would close db as well, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// WithSession pins one connection for fn and releases it afterwards.
func (s *Store) WithSession(ctx context.Context, fn func(records.Store) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(&Session{conn: conn})
}

// Session is a records.Store bound to a single connection.
type Session struct {
	conn *sql.Conn
}

var _ records.Store = (*Session)(nil)

// =============================================================================
// CLIENTS
// =============================================================================

const clientColumns = `id, name, phone, email, address, dob, nominee_name, nominee_dob`

// CreateClient inserts c and sets its ID.
func (s *Session) CreateClient(ctx context.Context, c *records.Client) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO clients (name, phone, email, address, dob, nominee_name, nominee_dob)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address,
		nullString(c.DOB), nullString(c.NomineeName), nullString(c.NomineeDOB),
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read client id: %w", err)
	}
	c.ID = records.ClientID(id)
	return nil
}

// GetClient retrieves a client by ID.
func (s *Session) GetClient(ctx context.Context, id records.ClientID) (*records.Client, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NewNotFound("client", int64(id))
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClient overwrites every column of an existing client.
func (s *Session) UpdateClient(ctx context.Context, c *records.Client) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, phone = ?, email = ?, address = ?, dob = ?, nominee_name = ?, nominee_dob = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Address,
		nullString(c.DOB), nullString(c.NomineeName), nullString(c.NomineeDOB),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return expectOne(res, "client", int64(c.ID))
}

// DeleteClient removes a client; policies and documents follow by cascade.
func (s *Session) DeleteClient(ctx context.Context, id records.ClientID) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return expectOne(res, "client", int64(id))
}

// FindClients returns clients whose name contains q, ordered by name.
func (s *Session) FindClients(ctx context.Context, q string) ([]records.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients"
	var args []any
	if q != "" {
		query += ` WHERE fold(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(strings.ToLower(q)))
	}
	query += " ORDER BY name COLLATE FOLD, id"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []records.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CountClients returns the number of clients.
func (s *Session) CountClients(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(id) FROM clients").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}

func scanClient(row scanner) (records.Client, error) {
	var (
		c           records.Client
		dob         sql.NullString
		nomineeName sql.NullString
		nomineeDOB  sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &dob, &nomineeName, &nomineeDOB)
	if errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan client: %w", err)
	}
	c.DOB = dob.String
	c.NomineeName = nomineeName.String
	c.NomineeDOB = nomineeDOB.String
	return c, nil
}

// =============================================================================
// POLICIES
// =============================================================================

const policyColumns = `p.id, p.client_id, p.policy_number, p.vehicle_number, p.vehicle_type,
	p.agency, p.policy_type, p.insurance_company, p.premium,
	p.policy_start_date, p.policy_end_date, p.account_details`

// CreatePolicy inserts p for an existing client and sets its ID.
func (s *Session) CreatePolicy(ctx context.Context, p *records.Policy) error {
	if err := s.clientExists(ctx, p.ClientID); err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO policies
		(client_id, policy_number, vehicle_number, vehicle_type, agency, policy_type,
		 insurance_company, premium, policy_start_date, policy_end_date, account_details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.PolicyNumber, p.VehicleNumber, p.VehicleType, p.Agency, p.PolicyType,
		p.InsuranceCompany, p.Premium.String(),
		nullString(p.StartDate), nullString(p.EndDate), p.AccountDetails,
	)
	if isForeignKeyError(err) {
		return records.NewNotFound("client", int64(p.ClientID))
	}
	if err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read policy id: %w", err)
	}
	p.ID = records.PolicyID(id)
	return nil
}

// GetPolicy retrieves a policy by ID.
func (s *Session) GetPolicy(ctx context.Context, id records.PolicyID) (*records.Policy, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM policies p WHERE p.id = ?", id)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NewNotFound("policy", int64(id))
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePolicy overwrites a policy's fields. client_id is never changed.
func (s *Session) UpdatePolicy(ctx context.Context, p *records.Policy) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE policies
		SET policy_number = ?, vehicle_number = ?, vehicle_type = ?, agency = ?, policy_type = ?,
		    insurance_company = ?, premium = ?, policy_start_date = ?, policy_end_date = ?,
		    account_details = ?
		WHERE id = ?`,
		p.PolicyNumber, p.VehicleNumber, p.VehicleType, p.Agency, p.PolicyType,
		p.InsuranceCompany, p.Premium.String(),
		nullString(p.StartDate), nullString(p.EndDate), p.AccountDetails,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	return expectOne(res, "policy", int64(p.ID))
}

// DeletePolicy removes a policy.
func (s *Session) DeletePolicy(ctx context.Context, id records.PolicyID) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM policies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return expectOne(res, "policy", int64(id))
}

// FindPolicies returns policies whose number contains q with their client's
// name, ordered by end date.
func (s *Session) FindPolicies(ctx context.Context, q string) ([]records.PolicyListing, error) {
	query := "SELECT " + policyColumns + ", c.name FROM policies p JOIN clients c ON p.client_id = c.id"
	var args []any
	if q != "" {
		query += ` WHERE fold(p.policy_number) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(strings.ToLower(q)))
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var listings []records.PolicyListing
	for rows.Next() {
		var l records.PolicyListing
		p, err := scanPolicy(rows, &l.ClientName)
		if err != nil {
			return nil, err
		}
		l.Policy = p
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stored dates are DD/MM/YYYY, so SQL ordering would be lexical.
	sort.SliceStable(listings, func(i, j int) bool {
		return records.EndDateLess(listings[i].Policy, listings[j].Policy)
	})
	return listings, nil
}

// PoliciesByClient returns a client's policies ordered by end date.
func (s *Session) PoliciesByClient(ctx context.Context, id records.ClientID) ([]records.Policy, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+policyColumns+" FROM policies p WHERE p.client_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var policies []records.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(policies, func(i, j int) bool {
		return records.EndDateLess(policies[i], policies[j])
	})
	return policies, nil
}

// scanPolicy scans policyColumns followed by any extra destinations.
func scanPolicy(row scanner, extra ...any) (records.Policy, error) {
	var (
		p         records.Policy
		premium   sql.NullString
		startDate sql.NullString
		endDate   sql.NullString
	)
	dest := []any{
		&p.ID, &p.ClientID, &p.PolicyNumber, &p.VehicleNumber, &p.VehicleType,
		&p.Agency, &p.PolicyType, &p.InsuranceCompany, &premium,
		&startDate, &endDate, &p.AccountDetails,
	}
	err := row.Scan(append(dest, extra...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan policy: %w", err)
	}

	p.Premium = parsePremium(premium)
	p.StartDate = startDate.String
	p.EndDate = endDate.String
	return p, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

const documentColumns = `id, client_id, filename, storage_key, uploaded_at`

// CreateDocument inserts d for an existing client and sets its ID.
func (s *Session) CreateDocument(ctx context.Context, d *records.Document) error {
	if err := s.clientExists(ctx, d.ClientID); err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO documents (client_id, filename, storage_key, uploaded_at)
		VALUES (?, ?, ?, ?)`,
		d.ClientID, d.Filename, d.StorageKey, d.UploadedAt.UTC().Format(time.RFC3339),
	)
	if isForeignKeyError(err) {
		return records.NewNotFound("client", int64(d.ClientID))
	}
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	d.ID = records.DocumentID(id)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Session) GetDocument(ctx context.Context, id records.DocumentID) (*records.Document, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NewNotFound("document", int64(id))
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RenameDocument changes a document's label.
func (s *Session) RenameDocument(ctx context.Context, id records.DocumentID, filename string) error {
	res, err := s.conn.ExecContext(ctx,
		"UPDATE documents SET filename = ? WHERE id = ?", filename, id)
	if err != nil {
		return fmt.Errorf("failed to rename document: %w", err)
	}
	return expectOne(res, "document", int64(id))
}

// DeleteDocument removes a document record.
func (s *Session) DeleteDocument(ctx context.Context, id records.DocumentID) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return expectOne(res, "document", int64(id))
}

// DocumentsByClient returns a client's documents ordered by label.
func (s *Session) DocumentsByClient(ctx context.Context, id records.ClientID) ([]records.Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE client_id = ? ORDER BY filename, id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []records.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row scanner) (records.Document, error) {
	var (
		d          records.Document
		uploadedAt string
	)
	err := row.Scan(&d.ID, &d.ClientID, &d.Filename, &d.StorageKey, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, err
	}
	if err != nil {
		return d, fmt.Errorf("failed to scan document: %w", err)
	}
	if d.UploadedAt, err = time.Parse(time.RFC3339, uploadedAt); err != nil {
		return d, fmt.Errorf("document %d has unreadable uploaded_at %q: %w", d.ID, uploadedAt, err)
	}
	return d, nil
}

// =============================================================================
// AGENCIES
// =============================================================================

// CreateAgency inserts a and sets its ID. Duplicate names fail with ErrConflict.
func (s *Session) CreateAgency(ctx context.Context, a *records.Agency) error {
	res, err := s.conn.ExecContext(ctx, "INSERT INTO agencies (name) VALUES (?)", a.Name)
	if isUniqueConstraintError(err) {
		return &records.ConflictError{Name: a.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to insert agency: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read agency id: %w", err)
	}
	a.ID = records.AgencyID(id)
	return nil
}

// GetAgency retrieves an agency by ID.
func (s *Session) GetAgency(ctx context.Context, id records.AgencyID) (*records.Agency, error) {
	var a records.Agency
	err := s.conn.QueryRowContext(ctx,
		"SELECT id, name FROM agencies WHERE id = ?", id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NewNotFound("agency", int64(id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency: %w", err)
	}
	return &a, nil
}

// UpdateAgency renames an agency and the policies that named it, atomically.
func (s *Session) UpdateAgency(ctx context.Context, a *records.Agency) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldName string
	err = tx.QueryRowContext(ctx, "SELECT name FROM agencies WHERE id = ?", a.ID).Scan(&oldName)
	if errors.Is(err, sql.ErrNoRows) {
		return records.NewNotFound("agency", int64(a.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to get agency: %w", err)
	}
	if oldName == a.Name {
		return nil
	}

	_, err = tx.ExecContext(ctx, "UPDATE agencies SET name = ? WHERE id = ?", a.Name, a.ID)
	if isUniqueConstraintError(err) {
		return &records.ConflictError{Name: a.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to update agency: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE policies SET agency = ? WHERE agency = ?", a.Name, oldName); err != nil {
		return fmt.Errorf("failed to rename agency on policies: %w", err)
	}

	return tx.Commit()
}

// DeleteAgency removes an agency. Policies keep the name as free text.
func (s *Session) DeleteAgency(ctx context.Context, id records.AgencyID) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM agencies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete agency: %w", err)
	}
	return expectOne(res, "agency", int64(id))
}

// ListAgencies returns all agencies ordered by name.
func (s *Session) ListAgencies(ctx context.Context) ([]records.Agency, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, name FROM agencies ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query agencies: %w", err)
	}
	defer rows.Close()

	var agencies []records.Agency
	for rows.Next() {
		var a records.Agency
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func (s *Session) clientExists(ctx context.Context, id records.ClientID) error {
	var one int
	err := s.conn.QueryRowContext(ctx, "SELECT 1 FROM clients WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return records.NewNotFound("client", int64(id))
	}
	if err != nil {
		return fmt.Errorf("failed to look up client: %w", err)
	}
	return nil
}

func expectOne(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return records.NewNotFound(kind, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// parsePremium reads a stored premium. NULL and unreadable values count as zero.
func parsePremium(v sql.NullString) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String))
	if err != nil {
		return decimal.Zero
	}
	return d
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
