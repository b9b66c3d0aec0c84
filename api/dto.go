/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the record model from the wire contract the front-office pages use.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - FlashResponse / ErrorResponse: wrappers carrying the user-facing message
    and the page the browser should go to next

DATES:
  Record DTOs carry stored display-form dates (DD/MM/YYYY). Form DTOs carry
  input-form dates (YYYY-MM-DD) ready for date pickers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/samvbk/insurance-dashboard/dashboard"
	"github.com/samvbk/insurance-dashboard/records"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENVELOPES
// =============================================================================

// FlashResponse answers a successful mutation.
type FlashResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Data     any    `json:"data,omitempty"`
}

// ErrorResponse answers a failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// =============================================================================
// CLIENTS
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DOB         string `json:"dob,omitempty"`
	NomineeName string `json:"nominee_name,omitempty"`
	NomineeDOB  string `json:"nominee_dob,omitempty"`
}

// ClientRequest is the add/edit client form.
type ClientRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DOB         string `json:"dob"`
	HasNominee  string `json:"has_nominee"` // "yes" designates a nominee
	NomineeName string `json:"nominee_name"`
	NomineeDOB  string `json:"nominee_dob"`
}

// ClientDetailDTO is a client with its policies and documents.
type ClientDetailDTO struct {
	Client    ClientDTO     `json:"client"`
	Policies  []PolicyDTO   `json:"policies"`
	Documents []DocumentDTO `json:"documents"`
}

func (req ClientRequest) toInput() records.ClientInput {
	return records.ClientInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		DOB:         req.DOB,
		HasNominee:  req.HasNominee == "yes",
		NomineeName: req.NomineeName,
		NomineeDOB:  req.NomineeDOB,
	}
}

func clientRequestFromInput(in records.ClientInput) ClientRequest {
	req := ClientRequest{
		Name:        in.Name,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
		DOB:         in.DOB,
		HasNominee:  "no",
		NomineeName: in.NomineeName,
		NomineeDOB:  in.NomineeDOB,
	}
	if in.HasNominee {
		req.HasNominee = "yes"
	}
	return req
}

func toClientDTO(c records.Client) ClientDTO {
	return ClientDTO{
		ID:          int64(c.ID),
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		DOB:         c.DOB,
		NomineeName: c.NomineeName,
		NomineeDOB:  c.NomineeDOB,
	}
}

func toClientDTOs(clients []records.Client) []ClientDTO {
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	return dtos
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a policy in API responses.
type PolicyDTO struct {
	ID               int64           `json:"id"`
	ClientID         int64           `json:"client_id"`
	ClientName       string          `json:"client_name,omitempty"`
	PolicyNumber     string          `json:"policy_number"`
	VehicleNumber    string          `json:"vehicle_number"`
	VehicleType      string          `json:"vehicle_type"`
	Agency           string          `json:"agency"`
	PolicyType       string          `json:"policy_type"`
	InsuranceCompany string          `json:"insurance_company"`
	Premium          decimal.Decimal `json:"premium"`
	StartDate        string          `json:"policy_start_date,omitempty"`
	EndDate          string          `json:"policy_end_date,omitempty"`
	AccountDetails   string          `json:"account_details"`
}

// PolicyRequest is the add/edit policy form.
type PolicyRequest struct {
	PolicyNumber     string `json:"policy_number"`
	VehicleNumber    string `json:"vehicle_number"`
	VehicleType      string `json:"vehicle_type"`
	Agency           string `json:"agency"`
	PolicyType       string `json:"policy_type"`
	InsuranceCompany string `json:"insurance_company"`
	Premium          string `json:"premium"`
	StartDate        string `json:"policy_start_date"`
	EndDate          string `json:"policy_end_date"`
	AccountDetails   string `json:"account_details"`
}

// PolicyFormDTO is the edit policy form with the choices it offers.
type PolicyFormDTO struct {
	ID                 int64         `json:"id"`
	ClientID           int64         `json:"client_id"`
	Values             PolicyRequest `json:"values"`
	Agencies           []AgencyDTO   `json:"agencies"`
	InsuranceCompanies []string      `json:"insurance_companies"`
}

func (req PolicyRequest) toInput() records.PolicyInput {
	return records.PolicyInput(req)
}

func toPolicyDTO(p records.Policy) PolicyDTO {
	return PolicyDTO{
		ID:               int64(p.ID),
		ClientID:         int64(p.ClientID),
		PolicyNumber:     p.PolicyNumber,
		VehicleNumber:    p.VehicleNumber,
		VehicleType:      p.VehicleType,
		Agency:           p.Agency,
		PolicyType:       p.PolicyType,
		InsuranceCompany: p.InsuranceCompany,
		Premium:          p.Premium,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		AccountDetails:   p.AccountDetails,
	}
}

func toPolicyDTOs(policies []records.Policy) []PolicyDTO {
	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toPolicyDTO(p)
	}
	return dtos
}

func toListingDTOs(listings []records.PolicyListing) []PolicyDTO {
	dtos := make([]PolicyDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toPolicyDTO(l.Policy)
		dtos[i].ClientName = l.ClientName
	}
	return dtos
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentDTO represents a document in API responses.
type DocumentDTO struct {
	ID         int64  `json:"id"`
	ClientID   int64  `json:"client_id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// RenameDocumentRequest is the edit document form.
type RenameDocumentRequest struct {
	Filename string `json:"filename"`
}

func toDocumentDTO(d records.Document) DocumentDTO {
	return DocumentDTO{
		ID:         int64(d.ID),
		ClientID:   int64(d.ClientID),
		Filename:   d.Filename,
		URL:        documentPath(d.ID),
		UploadedAt: d.UploadedAt.Format(time.RFC3339),
	}
}

func toDocumentDTOs(docs []records.Document) []DocumentDTO {
	dtos := make([]DocumentDTO, len(docs))
	for i, d := range docs {
		dtos[i] = toDocumentDTO(d)
	}
	return dtos
}

// =============================================================================
// AGENCIES
// =============================================================================

// AgencyDTO represents an agency in API responses.
type AgencyDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AgencyRequest is the add/edit agency form.
type AgencyRequest struct {
	Name string `json:"name"`
}

func toAgencyDTOs(agencies []records.Agency) []AgencyDTO {
	dtos := make([]AgencyDTO, len(agencies))
	for i, a := range agencies {
		dtos[i] = AgencyDTO{ID: int64(a.ID), Name: a.Name}
	}
	return dtos
}

// =============================================================================
// DASHBOARD
// =============================================================================

// UpcomingBirthdayDTO is one entry of the upcoming birthdays list.
type UpcomingBirthdayDTO struct {
	Client ClientDTO `json:"client"`
	Date   string    `json:"date"` // display form
	InDays int       `json:"in_days"`
}

// BirthdaysDTO is the birthdays view.
type BirthdaysDTO struct {
	Today    []ClientDTO           `json:"todays_birthdays"`
	Upcoming []UpcomingBirthdayDTO `json:"upcoming_birthdays"`
}

// RenewalDTO is a policy nearing its end date.
type RenewalDTO struct {
	Policy   PolicyDTO `json:"policy"`
	DaysLeft int       `json:"days_left"`
}

// SummaryDTO is the dashboard and reports view.
type SummaryDTO struct {
	ClientCount         int             `json:"client_count"`
	PolicyCount         int             `json:"policy_count"`
	AgencyCount         int             `json:"agency_count"`
	UpcomingPolicyCount int             `json:"upcoming_policy_count"`
	TotalPremium        decimal.Decimal `json:"total_premium"`
	AsOf                string          `json:"as_of"`
	Renewals            []RenewalDTO    `json:"renewals,omitempty"`
}

func toBirthdaysDTO(b *dashboard.Birthdays) BirthdaysDTO {
	dto := BirthdaysDTO{
		Today:    toClientDTOs(b.Today),
		Upcoming: make([]UpcomingBirthdayDTO, len(b.Upcoming)),
	}
	for i, u := range b.Upcoming {
		dto.Upcoming[i] = UpcomingBirthdayDTO{
			Client: toClientDTO(u.Client),
			Date:   u.Date.Format(records.DisplayLayout),
			InDays: u.InDays,
		}
	}
	return dto
}

func toSummaryDTO(s *dashboard.Summary, renewals []dashboard.Renewal) SummaryDTO {
	dto := SummaryDTO{
		ClientCount:         s.ClientCount,
		PolicyCount:         s.PolicyCount,
		AgencyCount:         s.AgencyCount,
		UpcomingPolicyCount: s.UpcomingPolicyCount,
		TotalPremium:        s.TotalPremium,
		AsOf:                s.AsOf.Format(records.InputLayout),
	}
	for _, r := range renewals {
		p := toPolicyDTO(r.Policy)
		p.ClientName = r.ClientName
		dto.Renewals = append(dto.Renewals, RenewalDTO{Policy: p, DaysLeft: r.DaysLeft})
	}
	return dto
}
