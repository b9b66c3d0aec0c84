/*
Package records holds the agency's record model and the rules for creating,
updating and searching it.

PURPOSE:
  Clients, their vehicle policies, their scanned documents and the
  sub-agencies that sell policies. Everything with behavior beyond direct
  pass-through lives here: date normalization between the form and the stored
  display format, nominee clearing, premium defaulting, insurance company
  validation and document storage keys.

KEY CONCEPTS IN THIS FILE (types.go):
  - Client:   root entity, owns Policies and Documents
  - Policy:   one vehicle policy held by a Client
  - Document: a scanned file attached to a Client
  - Agency:   a named sub-agency, unique by name

DATES:
  Every stored date is in display form (DD/MM/YYYY). An empty string means
  "no date". Only the edit-form boundary sees the input form (YYYY-MM-DD);
  see dates.go.

SEE ALSO:
  - dates.go: Date normalizer
  - store.go: Persistence interface
  - service.go: Record service
  - store/sqlite: SQLite implementation of Store
*/
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	ClientID   int64
	PolicyID   int64
	DocumentID int64
	AgencyID   int64
)

// =============================================================================
// ENTITIES
// =============================================================================

// Client is the root record. DOB and NomineeDOB are display-form dates.
type Client struct {
	ID          ClientID
	Name        string
	Phone       string
	Email       string
	Address     string
	DOB         string
	NomineeName string
	NomineeDOB  string
}

// HasNominee reports whether a nominee is designated.
func (c Client) HasNominee() bool {
	return c.NomineeName != "" || c.NomineeDOB != ""
}

// Policy is a vehicle insurance policy held by a client.
// Agency is the agency's name, not a reference to Agency.ID.
type Policy struct {
	ID               PolicyID
	ClientID         ClientID
	PolicyNumber     string
	VehicleNumber    string
	VehicleType      string
	Agency           string
	PolicyType       string
	InsuranceCompany string
	Premium          decimal.Decimal
	StartDate        string
	EndDate          string
	AccountDetails   string
}

// PolicyListing is a policy joined with its owner's name.
type PolicyListing struct {
	Policy
	ClientName string
}

// Document is a scanned file attached to a client.
// Filename is the label shown to staff; StorageKey names the stored file and
// never changes after upload.
type Document struct {
	ID         DocumentID
	ClientID   ClientID
	Filename   string
	StorageKey string
	UploadedAt time.Time
}

// Agency is a sub-agency selling policies.
type Agency struct {
	ID   AgencyID
	Name string
}

// =============================================================================
// FORM INPUTS
// =============================================================================

// ClientInput carries raw client form fields. Dates are input-form (YYYY-MM-DD).
type ClientInput struct {
	Name        string
	Phone       string
	Email       string
	Address     string
	DOB         string
	HasNominee  bool
	NomineeName string
	NomineeDOB  string
}

// PolicyInput carries raw policy form fields. Dates are input-form and
// Premium is the submitted text; blank means zero.
type PolicyInput struct {
	PolicyNumber     string
	VehicleNumber    string
	VehicleType      string
	Agency           string
	PolicyType       string
	InsuranceCompany string
	Premium          string
	StartDate        string
	EndDate          string
	AccountDetails   string
}

// ClientDetail is a client with everything it owns.
type ClientDetail struct {
	Client    Client
	Policies  []Policy
	Documents []Document
}
