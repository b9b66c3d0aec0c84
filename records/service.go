/*
service.go - Record service: the write rules for clients, policies, documents
and agencies

PURPOSE:
  Each operation takes raw form values, applies the record rules and hands
  the result to the request's Store. The service holds no connection of its
  own; callers pass the session they opened for the request.

RULES:
  Clients:   dob and nominee dob go through ToDisplay. Without a nominee the
             nominee fields are cleared, whatever was submitted.
  Policies:  start/end dates go through ToDisplay, blank premium is zero,
             insurer must be in the closed list.
  Documents: stored under an opaque key; the label is the only renameable part.
  Agencies:  names are required and unique.
  Deletes:   deleting a client removes its policies, documents and files.

SEE ALSO:
  - dates.go: Date normalizer
  - store.go: Store interface
  - files/disk.go: Document file storage
*/
package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samvbk/insurance-dashboard/files"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FileStore keeps the bytes behind Document records.
type FileStore interface {
	Save(clientID int64, key string, r io.Reader) (int64, error)
	Open(clientID int64, key string) (*os.File, error)
	Remove(clientID int64, key string) error
	RemoveClient(clientID int64) error
}

// Service applies the record rules on top of a per-request Store.
type Service struct {
	files  FileStore
	logger *zap.Logger
	now    func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service storing document files in fs.
func NewService(fs FileStore, opts ...Option) *Service {
	s := &Service{files: fs, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// CLIENTS
// =============================================================================

// CreateClient validates the form and stores a new client.
func (s *Service) CreateClient(ctx context.Context, st Store, in ClientInput) (*Client, error) {
	c, err := clientFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := st.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.Int64("client_id", int64(c.ID)))
	return c, nil
}

// UpdateClient replaces every field of an existing client.
func (s *Service) UpdateClient(ctx context.Context, st Store, id ClientID, in ClientInput) (*Client, error) {
	c, err := clientFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := st.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClientForm returns a client's fields ready for the edit form.
// Dates that can't be converted are returned as stored and logged.
func (s *Service) ClientForm(ctx context.Context, st Store, id ClientID) (*ClientInput, error) {
	c, err := st.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientInput{
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		DOB:         s.inputDate("client", int64(id), "dob", c.DOB),
		HasNominee:  c.HasNominee(),
		NomineeName: c.NomineeName,
		NomineeDOB:  s.inputDate("client", int64(id), "nominee_dob", c.NomineeDOB),
	}, nil
}

// ClientDetail loads a client with its policies and documents.
func (s *Service) ClientDetail(ctx context.Context, st Store, id ClientID) (*ClientDetail, error) {
	c, err := st.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	policies, err := st.PoliciesByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := st.DocumentsByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientDetail{Client: *c, Policies: policies, Documents: docs}, nil
}

// FindClients searches clients by name.
func (s *Service) FindClients(ctx context.Context, st Store, q string) ([]Client, error) {
	return st.FindClients(ctx, strings.TrimSpace(q))
}

// DeleteClient removes the client, its policies and documents, then its files.
func (s *Service) DeleteClient(ctx context.Context, st Store, id ClientID) error {
	if err := st.DeleteClient(ctx, id); err != nil {
		return err
	}
	if err := s.files.RemoveClient(int64(id)); err != nil {
		s.logger.Warn("failed to remove client files",
			zap.Int64("client_id", int64(id)), zap.Error(err))
	}
	s.logger.Info("client deleted", zap.Int64("client_id", int64(id)))
	return nil
}

func clientFromInput(in ClientInput) (*Client, error) {
	c := &Client{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	if c.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}

	var err error
	if c.DOB, err = ToDisplay(in.DOB); err != nil {
		return nil, withField(err, "dob")
	}
	if !in.HasNominee {
		return c, nil
	}
	c.NomineeName = strings.TrimSpace(in.NomineeName)
	if c.NomineeDOB, err = ToDisplay(in.NomineeDOB); err != nil {
		return nil, withField(err, "nominee_dob")
	}
	return c, nil
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyForm is a stored policy converted back to form values.
type PolicyForm struct {
	ID       PolicyID
	ClientID ClientID
	Input    PolicyInput
}

// CreatePolicy stores a new policy for an existing client.
func (s *Service) CreatePolicy(ctx context.Context, st Store, clientID ClientID, in PolicyInput) (*Policy, error) {
	p, err := policyFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ClientID = clientID
	if err := st.CreatePolicy(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("policy created",
		zap.Int64("policy_id", int64(p.ID)), zap.Int64("client_id", int64(clientID)))
	return p, nil
}

// UpdatePolicy replaces a policy's fields. The owning client never changes.
func (s *Service) UpdatePolicy(ctx context.Context, st Store, id PolicyID, in PolicyInput) (*Policy, error) {
	existing, err := st.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := policyFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.ClientID = existing.ClientID
	if err := st.UpdatePolicy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PolicyForm returns a policy's fields ready for the edit form.
func (s *Service) PolicyForm(ctx context.Context, st Store, id PolicyID) (*PolicyForm, error) {
	p, err := st.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PolicyForm{
		ID:       p.ID,
		ClientID: p.ClientID,
		Input: PolicyInput{
			PolicyNumber:     p.PolicyNumber,
			VehicleNumber:    p.VehicleNumber,
			VehicleType:      p.VehicleType,
			Agency:           p.Agency,
			PolicyType:       p.PolicyType,
			InsuranceCompany: p.InsuranceCompany,
			Premium:          p.Premium.String(),
			StartDate:        s.inputDate("policy", int64(id), "policy_start_date", p.StartDate),
			EndDate:          s.inputDate("policy", int64(id), "policy_end_date", p.EndDate),
			AccountDetails:   p.AccountDetails,
		},
	}, nil
}

// FindPolicies searches policies by policy number.
func (s *Service) FindPolicies(ctx context.Context, st Store, q string) ([]PolicyListing, error) {
	return st.FindPolicies(ctx, strings.TrimSpace(q))
}

// DeletePolicy removes a policy and returns what was removed.
func (s *Service) DeletePolicy(ctx context.Context, st Store, id PolicyID) (*Policy, error) {
	p, err := st.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.DeletePolicy(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func policyFromInput(in PolicyInput) (*Policy, error) {
	p := &Policy{
		PolicyNumber:     strings.TrimSpace(in.PolicyNumber),
		VehicleNumber:    strings.TrimSpace(in.VehicleNumber),
		VehicleType:      strings.TrimSpace(in.VehicleType),
		Agency:           strings.TrimSpace(in.Agency),
		PolicyType:       strings.TrimSpace(in.PolicyType),
		InsuranceCompany: strings.TrimSpace(in.InsuranceCompany),
		AccountDetails:   strings.TrimSpace(in.AccountDetails),
	}
	if !IsInsuranceCompany(p.InsuranceCompany) {
		return nil, &ValidationError{Field: "insurance_company", Message: "must be one of the listed insurance companies"}
	}

	var err error
	if p.Premium, err = parsePremium(in.Premium); err != nil {
		return nil, err
	}
	if p.StartDate, err = ToDisplay(in.StartDate); err != nil {
		return nil, withField(err, "policy_start_date")
	}
	if p.EndDate, err = ToDisplay(in.EndDate); err != nil {
		return nil, withField(err, "policy_end_date")
	}
	return p, nil
}

func parsePremium(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "premium", Message: "must be a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "premium", Message: "must not be negative"}
	}
	return d, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// UploadDocument stores r for the client and records it under name.
// The file is removed again if the record can't be written.
func (s *Service) UploadDocument(ctx context.Context, st Store, clientID ClientID, name string, r io.Reader) (*Document, error) {
	label := files.SanitizeName(name)
	if label == "" {
		return nil, &ValidationError{Field: "document", Message: "no file selected"}
	}
	if _, err := st.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	key := files.NewKey(label)
	if _, err := s.files.Save(int64(clientID), key, r); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	d := &Document{
		ClientID:   clientID,
		Filename:   label,
		StorageKey: key,
		UploadedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := st.CreateDocument(ctx, d); err != nil {
		if rmErr := s.files.Remove(int64(clientID), key); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload",
				zap.String("storage_key", key), zap.Error(rmErr))
		}
		return nil, err
	}
	s.logger.Info("document uploaded",
		zap.Int64("document_id", int64(d.ID)), zap.Int64("client_id", int64(clientID)))
	return d, nil
}

// RenameDocument changes the label staff see. The stored file is untouched.
func (s *Service) RenameDocument(ctx context.Context, st Store, id DocumentID, name string) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "filename", Message: "cannot be empty"}
	}
	if err := st.RenameDocument(ctx, id, name); err != nil {
		return nil, err
	}
	return st.GetDocument(ctx, id)
}

// OpenDocument returns the record and its stored file. The caller closes the file.
func (s *Service) OpenDocument(ctx context.Context, st Store, id DocumentID) (*Document, *os.File, error) {
	d, err := st.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.files.Open(int64(d.ClientID), d.StorageKey)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("stored file missing",
			zap.Int64("document_id", int64(id)), zap.String("storage_key", d.StorageKey))
		return nil, nil, fmt.Errorf("stored file for document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return d, f, nil
}

// DeleteDocument removes the record, then the stored file.
func (s *Service) DeleteDocument(ctx context.Context, st Store, id DocumentID) (*Document, error) {
	d, err := st.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.DeleteDocument(ctx, id); err != nil {
		return nil, err
	}
	if err := s.files.Remove(int64(d.ClientID), d.StorageKey); err != nil {
		s.logger.Warn("failed to remove stored file",
			zap.Int64("document_id", int64(id)), zap.Error(err))
	}
	return d, nil
}

// =============================================================================
// AGENCIES
// =============================================================================

// CreateAgency stores a new agency. Duplicate names fail with ErrConflict.
func (s *Service) CreateAgency(ctx context.Context, st Store, name string) (*Agency, error) {
	a := &Agency{Name: strings.TrimSpace(name)}
	if a.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := st.CreateAgency(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RenameAgency renames an agency; policies naming it follow the new name.
func (s *Service) RenameAgency(ctx context.Context, st Store, id AgencyID, name string) (*Agency, error) {
	a := &Agency{ID: id, Name: strings.TrimSpace(name)}
	if a.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := st.UpdateAgency(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAgency removes an agency. Policies keep the name they were sold under.
func (s *Service) DeleteAgency(ctx context.Context, st Store, id AgencyID) error {
	return st.DeleteAgency(ctx, id)
}

// ListAgencies returns all agencies ordered by name.
func (s *Service) ListAgencies(ctx context.Context, st Store) ([]Agency, error) {
	return st.ListAgencies(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) inputDate(kind string, id int64, field, display string) string {
	v, err := ToInput(display)
	if err != nil {
		s.logger.Warn("stored date not in display form",
			zap.String("record", kind),
			zap.Int64("id", id),
			zap.String("field", field),
			zap.String("value", display))
		return display
	}
	return v
}
