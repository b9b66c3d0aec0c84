/*
handlers.go - HTTP API handlers for the agency record keeper

PURPOSE:
  Exposes the record service, reminder engine and reports via a JSON API.
  Handles HTTP request/response and JSON serialization, and delegates to
  the records and dashboard packages.

ENDPOINTS:
  Dashboard:
    GET    /api/dashboard                 Summary figures and renewals
    GET    /api/birthdays                 Today's and upcoming birthdays
    GET    /api/reports                   Summary figures

  Clients:
    GET    /api/clients?search=           List/search clients
    POST   /api/clients                   Create client
    GET    /api/clients/{id}              Client with policies and documents
    GET    /api/clients/{id}/form         Client as edit-form values
    PUT    /api/clients/{id}              Update client
    DELETE /api/clients/{id}              Delete client, policies, documents
    POST   /api/clients/{id}/policies     Add policy
    POST   /api/clients/{id}/documents    Upload document (multipart "document")

  Policies:
    GET    /api/policies?search=          List/search policies
    GET    /api/policies/{id}/form        Policy as edit-form values
    PUT    /api/policies/{id}             Update policy
    DELETE /api/policies/{id}             Delete policy

  Documents:
    GET    /api/documents/{id}            Stored file
    PUT    /api/documents/{id}            Rename
    DELETE /api/documents/{id}            Delete record and file

  Agencies:
    GET    /api/agencies                  List
    POST   /api/agencies                  Create
    PUT    /api/agencies/{id}             Rename
    DELETE /api/agencies/{id}             Delete

REQUEST FLOW:
  1. Parse HTTP request
  2. Open one store session for the request
  3. Call the record service or dashboard inside the session
  4. Serialize response: a flash message plus redirect for mutations

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed dates, invalid input
  - 404: Record not found
  - 409: Duplicate agency name
  - 500: Store failures
  No error stops the server; the failing request gets the message.

SECURITY NOTE:
  No authentication. Intended for a single office on a trusted network.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samvbk/insurance-dashboard/dashboard"
	"github.com/samvbk/insurance-dashboard/records"
	"go.uber.org/zap"
)

const (
	maxUploadBytes  = 32 << 20
	multipartMemory = 8 << 20
	uploadFieldName = "document"
	clientsPath     = "/clients"
	agenciesPath    = "/agencies"
	dashboardPath   = "/"
	genericFailure  = "Something went wrong. Please try again."
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     records.SessionOpener
	Records   *records.Service
	Reminders *dashboard.Reminders
	Reports   *dashboard.Reports

	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

type HandlerOption func(h *Handler)

func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.now = now
	}
}

// WithLocation sets the office time zone that decides the calendar date.
func WithLocation(loc *time.Location) HandlerOption {
	return func(h *Handler) {
		h.loc = loc
	}
}

// NewHandler creates a handler serving records from store.
func NewHandler(store records.SessionOpener, svc *records.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		Store:   store,
		Records: svc,
		Reports: dashboard.NewReports(),
		logger:  zap.NewNop(),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = NewMetrics(prometheus.NewRegistry())
	}
	h.Reminders = dashboard.NewReminders(h.logger)
	return h
}

// today is the office's current calendar date.
func (h *Handler) today() time.Time {
	return records.CalendarDate(h.now().In(h.loc))
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetDashboard returns the summary figures and the policies due for renewal.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.today()

	var (
		summary  *dashboard.Summary
		renewals []dashboard.Renewal
	)
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		if summary, err = h.Reports.Summary(ctx, st, today); err != nil {
			return err
		}
		renewals, err = h.Reminders.UpcomingRenewals(ctx, st, today)
		return err
	})
	if err != nil {
		h.fail(w, "dashboard", err, "")
		return
	}

	h.metrics.RenewalsPending.Set(float64(len(renewals)))
	writeJSON(w, http.StatusOK, toSummaryDTO(summary, renewals))
}

// ListBirthdays lists today's and upcoming client birthdays.
func (h *Handler) ListBirthdays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.today()

	var b *dashboard.Birthdays
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		b, err = h.Reminders.Birthdays(ctx, st, today)
		return err
	})
	if err != nil {
		h.fail(w, "birthdays", err, dashboardPath)
		return
	}
	writeJSON(w, http.StatusOK, toBirthdaysDTO(b))
}

// GetReports returns the summary figures.
func (h *Handler) GetReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.today()

	var summary *dashboard.Summary
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		summary, err = h.Reports.Summary(ctx, st, today)
		return err
	})
	if err != nil {
		h.fail(w, "reports", err, dashboardPath)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary, nil))
}

// ListInsuranceCompanies lists the insurers a policy may name.
func (h *Handler) ListInsuranceCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, records.InsuranceCompanies())
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns clients whose name contains ?search=, or all clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query().Get("search")

	var clients []records.Client
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		clients, err = h.Records.FindClients(ctx, st, q)
		return err
	})
	if err != nil {
		h.fail(w, "find_clients", err, dashboardPath)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// CreateClient adds a client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClientRequest
	if !decodeBody(w, r, &req, clientsPath) {
		return
	}

	var client *records.Client
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		client, err = h.Records.CreateClient(ctx, st, req.toInput())
		return err
	})
	if err != nil {
		h.fail(w, "create_client", err, clientsPath)
		return
	}

	h.metrics.Observe("create_client", nil)
	writeFlash(w, http.StatusCreated,
		fmt.Sprintf("Client %s was successfully added!", client.Name),
		clientsPath, toClientDTO(*client))
}

// GetClient returns a client with its policies and documents.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var detail *records.ClientDetail
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		detail, err = h.Records.ClientDetail(ctx, st, records.ClientID(id))
		return err
	})
	if err != nil {
		h.fail(w, "client_detail", err, clientsPath)
		return
	}

	writeJSON(w, http.StatusOK, ClientDetailDTO{
		Client:    toClientDTO(detail.Client),
		Policies:  toPolicyDTOs(detail.Policies),
		Documents: toDocumentDTOs(detail.Documents),
	})
}

// ClientForm returns a client's stored values converted for the edit form.
func (h *Handler) ClientForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var form *records.ClientInput
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		form, err = h.Records.ClientForm(ctx, st, records.ClientID(id))
		return err
	})
	if err != nil {
		h.fail(w, "client_form", err, clientsPath)
		return
	}
	writeJSON(w, http.StatusOK, clientRequestFromInput(*form))
}

// UpdateClient replaces a client's fields.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var req ClientRequest
	if !decodeBody(w, r, &req, clientPath(id)) {
		return
	}

	var client *records.Client
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		client, err = h.Records.UpdateClient(ctx, st, records.ClientID(id), req.toInput())
		return err
	})
	if err != nil {
		h.fail(w, "update_client", err, clientsPath)
		return
	}

	h.metrics.Observe("update_client", nil)
	writeFlash(w, http.StatusOK,
		fmt.Sprintf("Client %s was successfully updated!", client.Name),
		clientsPath, toClientDTO(*client))
}

// DeleteClient removes a client together with its policies and documents.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	err := h.Store.WithSession(ctx, func(st records.Store) error {
		return h.Records.DeleteClient(ctx, st, records.ClientID(id))
	})
	if err != nil {
		h.fail(w, "delete_client", err, clientsPath)
		return
	}

	h.metrics.Observe("delete_client", nil)
	h.metrics.RecordsDeleted.WithLabelValues("client").Inc()
	writeFlash(w, http.StatusOK, "Client deleted successfully!", clientsPath, nil)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// CreatePolicy adds a policy to a client.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var req PolicyRequest
	if !decodeBody(w, r, &req, clientPath(id)) {
		return
	}

	var policy *records.Policy
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		policy, err = h.Records.CreatePolicy(ctx, st, records.ClientID(id), req.toInput())
		return err
	})
	if err != nil {
		h.fail(w, "create_policy", err, clientPath(id))
		return
	}

	h.metrics.Observe("create_policy", nil)
	writeFlash(w, http.StatusCreated, "Policy added successfully!",
		clientPath(id), toPolicyDTO(*policy))
}

// ListPolicies returns policies whose number contains ?search=, soonest end date first.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query().Get("search")

	var listings []records.PolicyListing
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		listings, err = h.Records.FindPolicies(ctx, st, q)
		return err
	})
	if err != nil {
		h.fail(w, "find_policies", err, dashboardPath)
		return
	}
	writeJSON(w, http.StatusOK, toListingDTOs(listings))
}

// PolicyForm returns a policy converted for the edit form, with the
// agency and insurer choices.
func (h *Handler) PolicyForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var (
		form     *records.PolicyForm
		agencies []records.Agency
	)
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		if form, err = h.Records.PolicyForm(ctx, st, records.PolicyID(id)); err != nil {
			return err
		}
		agencies, err = h.Records.ListAgencies(ctx, st)
		return err
	})
	if err != nil {
		h.fail(w, "policy_form", err, clientsPath)
		return
	}

	writeJSON(w, http.StatusOK, PolicyFormDTO{
		ID:                 int64(form.ID),
		ClientID:           int64(form.ClientID),
		Values:             PolicyRequest(form.Input),
		Agencies:           toAgencyDTOs(agencies),
		InsuranceCompanies: records.InsuranceCompanies(),
	})
}

// UpdatePolicy replaces a policy's fields.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var req PolicyRequest
	if !decodeBody(w, r, &req, clientsPath) {
		return
	}

	var policy *records.Policy
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		policy, err = h.Records.UpdatePolicy(ctx, st, records.PolicyID(id), req.toInput())
		return err
	})
	if err != nil {
		h.fail(w, "update_policy", err, clientsPath)
		return
	}

	h.metrics.Observe("update_policy", nil)
	writeFlash(w, http.StatusOK, "Policy updated successfully!",
		clientPath(int64(policy.ClientID)), toPolicyDTO(*policy))
}

// DeletePolicy removes a policy.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var policy *records.Policy
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		policy, err = h.Records.DeletePolicy(ctx, st, records.PolicyID(id))
		return err
	})
	if err != nil {
		h.fail(w, "delete_policy", err, clientsPath)
		return
	}

	h.metrics.Observe("delete_policy", nil)
	h.metrics.RecordsDeleted.WithLabelValues("policy").Inc()
	writeFlash(w, http.StatusOK, "Policy deleted successfully!",
		clientPath(int64(policy.ClientID)), nil)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// UploadDocument stores the multipart file field "document" for a client.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}
	redirect := clientPath(id)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err, redirect)
		return
	}
	file, header, err := r.FormFile(uploadFieldName)
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "No file selected.", nil, redirect)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err, redirect)
		return
	}
	defer file.Close()

	var doc *records.Document
	err = h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		doc, err = h.Records.UploadDocument(ctx, st, records.ClientID(id), header.Filename, file)
		return err
	})
	if err != nil {
		h.fail(w, "upload_document", err, redirect)
		return
	}

	h.metrics.Observe("upload_document", nil)
	h.metrics.UploadedBytes.Add(float64(header.Size))
	writeFlash(w, http.StatusCreated, "Document uploaded successfully!",
		redirect, toDocumentDTO(*doc))
}

// GetDocument serves the stored file under its label.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var (
		doc  *records.Document
		body *os.File
	)
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		d, f, err := h.Records.OpenDocument(ctx, st, records.DocumentID(id))
		if err != nil {
			return err
		}
		doc, body = d, f
		return nil
	})
	if err != nil {
		h.fail(w, "open_document", err, clientsPath)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("inline", map[string]string{"filename": doc.Filename}))
	http.ServeContent(w, r, doc.Filename, doc.UploadedAt, body)
}

// RenameDocument changes a document's label.
func (h *Handler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var req RenameDocumentRequest
	if !decodeBody(w, r, &req, clientsPath) {
		return
	}

	var doc *records.Document
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		doc, err = h.Records.RenameDocument(ctx, st, records.DocumentID(id), req.Filename)
		return err
	})
	if err != nil {
		h.fail(w, "rename_document", err, clientsPath)
		return
	}

	h.metrics.Observe("rename_document", nil)
	writeFlash(w, http.StatusOK, "Document updated successfully!",
		clientPath(int64(doc.ClientID)), toDocumentDTO(*doc))
}

// DeleteDocument removes a document and its stored file.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, clientsPath)
	if !ok {
		return
	}

	var doc *records.Document
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		doc, err = h.Records.DeleteDocument(ctx, st, records.DocumentID(id))
		return err
	})
	if err != nil {
		h.fail(w, "delete_document", err, clientsPath)
		return
	}

	h.metrics.Observe("delete_document", nil)
	h.metrics.RecordsDeleted.WithLabelValues("document").Inc()
	writeFlash(w, http.StatusOK, "Document deleted successfully!",
		clientPath(int64(doc.ClientID)), nil)
}

// =============================================================================
// AGENCY HANDLERS
// =============================================================================

// ListAgencies returns all agencies ordered by name.
func (h *Handler) ListAgencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var agencies []records.Agency
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		agencies, err = h.Records.ListAgencies(ctx, st)
		return err
	})
	if err != nil {
		h.fail(w, "list_agencies", err, dashboardPath)
		return
	}
	writeJSON(w, http.StatusOK, toAgencyDTOs(agencies))
}

// CreateAgency adds an agency.
func (h *Handler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AgencyRequest
	if !decodeBody(w, r, &req, agenciesPath) {
		return
	}

	var agency *records.Agency
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		agency, err = h.Records.CreateAgency(ctx, st, req.Name)
		return err
	})
	if err != nil {
		h.fail(w, "create_agency", err, agenciesPath)
		return
	}

	h.metrics.Observe("create_agency", nil)
	writeFlash(w, http.StatusCreated, "Agency added successfully!",
		agenciesPath, AgencyDTO{ID: int64(agency.ID), Name: agency.Name})
}

// RenameAgency renames an agency and the policies sold under it.
func (h *Handler) RenameAgency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, agenciesPath)
	if !ok {
		return
	}

	var req AgencyRequest
	if !decodeBody(w, r, &req, agenciesPath) {
		return
	}

	var agency *records.Agency
	err := h.Store.WithSession(ctx, func(st records.Store) error {
		var err error
		agency, err = h.Records.RenameAgency(ctx, st, records.AgencyID(id), req.Name)
		return err
	})
	if err != nil {
		h.fail(w, "rename_agency", err, agenciesPath)
		return
	}

	h.metrics.Observe("rename_agency", nil)
	writeFlash(w, http.StatusOK, "Agency updated successfully!",
		agenciesPath, AgencyDTO{ID: int64(agency.ID), Name: agency.Name})
}

// DeleteAgency removes an agency.
func (h *Handler) DeleteAgency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, agenciesPath)
	if !ok {
		return
	}

	err := h.Store.WithSession(ctx, func(st records.Store) error {
		return h.Records.DeleteAgency(ctx, st, records.AgencyID(id))
	})
	if err != nil {
		h.fail(w, "delete_agency", err, agenciesPath)
		return
	}

	h.metrics.Observe("delete_agency", nil)
	h.metrics.RecordsDeleted.WithLabelValues("agency").Inc()
	writeFlash(w, http.StatusOK, "Agency deleted successfully!", agenciesPath, nil)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeFlash(w http.ResponseWriter, status int, message, redirect string, data any) {
	writeJSON(w, status, FlashResponse{Message: message, Redirect: redirect, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, err error, redirect string) {
	resp := ErrorResponse{Error: message, Redirect: redirect}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail reports a service error. Store failures are logged; their details
// stay out of the response.
func (h *Handler) fail(w http.ResponseWriter, operation string, err error, redirect string) {
	h.metrics.Observe(operation, err)

	status, message := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("operation", operation), zap.Error(err))
		writeError(w, status, message, nil, redirect)
		return
	}
	writeError(w, status, message, err, redirect)
}

// classify maps an error to its HTTP status and user-facing message.
func classify(err error) (int, string) {
	var (
		nf *records.NotFoundError
		ce *records.ConflictError
		fe *records.FormatError
		ve *records.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, capitalize(nf.Kind) + " not found."
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, "Record not found."
	case errors.As(err, &ce):
		return http.StatusConflict, fmt.Sprintf("Agency %q already exists.", ce.Name)
	case errors.As(err, &fe):
		return http.StatusBadRequest, fmt.Sprintf("Invalid date format for %s. Use %s.", fieldLabel(fe.Field), fe.Layout)
	case errors.As(err, &ve):
		return http.StatusBadRequest, capitalize(fieldLabel(ve.Field)) + " " + ve.Message + "."
	default:
		return http.StatusInternalServerError, genericFailure
	}
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, redirect string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err, redirect)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, redirect string) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", fmt.Errorf("invalid id %q", raw), redirect)
		return 0, false
	}
	return id, true
}

func clientPath(id int64) string {
	return fmt.Sprintf("%s/%d", clientsPath, id)
}

func documentPath(id records.DocumentID) string {
	return fmt.Sprintf("/api/documents/%d", id)
}

func fieldLabel(field string) string {
	if field == "" {
		return "date"
	}
	return strings.ReplaceAll(field, "_", " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
