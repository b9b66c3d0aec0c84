/*
sqlite_test.go - Tests for the SQLite store

Tests for:
- Client search ordering, LIKE escaping and non-ASCII case folding
- Cascading client deletes
- Agency uniqueness and rename propagation
- Policy ordering by parsed end date
- Reading NULL premiums and unreadable upload times
- Transaction rollback on a failed agency rename (sqlmock)
*/
package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samvbk/insurance-dashboard/records"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// session runs fn in a session and fails the test on error.
func session(t *testing.T, store *Store, fn func(st records.Store)) {
	t.Helper()
	err := store.WithSession(context.Background(), func(st records.Store) error {
		fn(st)
		return nil
	})
	require.NoError(t, err)
}

func addClient(t *testing.T, st records.Store, name string) *records.Client {
	t.Helper()
	c := &records.Client{Name: name, Phone: "98200 00000", DOB: "15/06/1990"}
	require.NoError(t, st.CreateClient(context.Background(), c))
	return c
}

func addPolicy(t *testing.T, st records.Store, clientID records.ClientID, number, endDate string) *records.Policy {
	t.Helper()
	p := &records.Policy{
		ClientID:         clientID,
		PolicyNumber:     number,
		Agency:           "Shree Agency",
		InsuranceCompany: "SBI General Insurance Co Ltd",
		Premium:          decimal.NewFromInt(1000),
		EndDate:          endDate,
	}
	require.NoError(t, st.CreatePolicy(context.Background(), p))
	return p
}

// =============================================================================
// CLIENTS
// =============================================================================

func TestClientCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		// GIVEN: A client with a nominee
		c := &records.Client{Name: "Anita", DOB: "15/06/1990", NomineeName: "Ravi", NomineeDOB: "01/02/2015"}
		require.NoError(t, st.CreateClient(ctx, c))
		require.NotZero(t, c.ID)

		// WHEN: Clearing the nominee
		c.NomineeName, c.NomineeDOB = "", ""
		require.NoError(t, st.UpdateClient(ctx, c))

		// THEN: The stored row matches
		got, err := st.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "15/06/1990", got.DOB)
		assert.False(t, got.HasNominee())

		// AND: Missing ids are NotFound
		_, err = st.GetClient(ctx, c.ID+100)
		assert.True(t, records.IsNotFound(err))
		assert.True(t, records.IsNotFound(st.UpdateClient(ctx, &records.Client{ID: c.ID + 100, Name: "x"})))
		assert.True(t, records.IsNotFound(st.DeleteClient(ctx, c.ID+100)))
	})
}

func TestFindClients_CaseInsensitiveOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		addClient(t, st, "zubin")
		addClient(t, st, "Anand")
		addClient(t, st, "bhavana")
		addClient(t, st, "Chetan")

		// WHEN: Searching for "AN"
		got, err := st.FindClients(ctx, "AN")
		require.NoError(t, err)

		// THEN: Matches ignore case and sort by name ignoring case
		names := make([]string, len(got))
		for i, c := range got {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"Anand", "bhavana", "Chetan"}, names)

		all, err := st.FindClients(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)

		n, err := st.CountClients(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}

func TestFindClients_FoldsNonASCII(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		// GIVEN: Names with accented capitals
		addClient(t, st, "Émile")
		addClient(t, st, "zoe")
		addClient(t, st, "Ängel")

		// WHEN: Searching in lower case
		got, err := st.FindClients(ctx, "émile")
		require.NoError(t, err)

		// THEN: The accented name still matches
		require.Len(t, got, 1)
		assert.Equal(t, "Émile", got[0].Name)

		got, err = st.FindClients(ctx, "ÄNG")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Ängel", got[0].Name)

		// AND: Ordering folds case the same way
		all, err := st.FindClients(ctx, "")
		require.NoError(t, err)
		names := make([]string, len(all))
		for i, c := range all {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"zoe", "Ängel", "Émile"}, names)
	})
}

func TestFindClients_WildcardsAreLiteral(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		addClient(t, st, "Ram")
		addClient(t, st, "100% Motors")
		addClient(t, st, "under_score")

		got, err := st.FindClients(ctx, "%")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "100% Motors", got[0].Name)

		got, err = st.FindClients(ctx, "_")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "under_score", got[0].Name)
	})
}

func TestDeleteClient_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		// GIVEN: A client with a policy and a document, and another client
		c := addClient(t, st, "Farah")
		other := addClient(t, st, "Gopal")
		addPolicy(t, st, c.ID, "P-1", "01/01/2025")
		keep := addPolicy(t, st, other.ID, "P-2", "01/01/2025")
		doc := &records.Document{ClientID: c.ID, Filename: "rc.pdf", StorageKey: "k1.pdf", UploadedAt: time.Now()}
		require.NoError(t, st.CreateDocument(ctx, doc))

		// WHEN: Deleting the client
		require.NoError(t, st.DeleteClient(ctx, c.ID))

		// THEN: Its policies and documents are gone, the other client's remain
		policies, err := st.FindPolicies(ctx, "")
		require.NoError(t, err)
		require.Len(t, policies, 1)
		assert.Equal(t, keep.ID, policies[0].ID)

		_, err = st.GetDocument(ctx, doc.ID)
		assert.True(t, records.IsNotFound(err))
	})
}

// =============================================================================
// POLICIES
// =============================================================================

func TestCreatePolicy_MissingClient(t *testing.T) {
	store := newTestStore(t)

	session(t, store, func(st records.Store) {
		err := st.CreatePolicy(context.Background(), &records.Policy{ClientID: 404, PolicyNumber: "P"})

		var nf *records.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "client", nf.Kind)
	})
}

func TestFindPolicies_OrderedByEndDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		c := addClient(t, st, "Hema")
		addPolicy(t, st, c.ID, "LATE", "15/01/2025")
		addPolicy(t, st, c.ID, "NONE", "")
		addPolicy(t, st, c.ID, "EARLY", "01/02/2024")
		addPolicy(t, st, c.ID, "MID", "31/12/2024")

		got, err := st.FindPolicies(ctx, "")
		require.NoError(t, err)

		numbers := make([]string, len(got))
		for i, l := range got {
			numbers[i] = l.PolicyNumber
			assert.Equal(t, "Hema", l.ClientName)
		}
		assert.Equal(t, []string{"EARLY", "MID", "LATE", "NONE"}, numbers)

		byClient, err := st.PoliciesByClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "EARLY", byClient[0].PolicyNumber)

		found, err := st.FindPolicies(ctx, "ear")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "EARLY", found[0].PolicyNumber)
	})
}

func TestUpdatePolicy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		c := addClient(t, st, "Indu")
		p := addPolicy(t, st, c.ID, "P-1", "01/01/2025")

		p.Premium = decimal.RequireFromString("2499.99")
		p.EndDate = ""
		require.NoError(t, st.UpdatePolicy(ctx, p))

		got, err := st.GetPolicy(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.Premium.Equal(decimal.RequireFromString("2499.99")))
		assert.Empty(t, got.EndDate)

		require.NoError(t, st.DeletePolicy(ctx, p.ID))
		assert.True(t, records.IsNotFound(st.DeletePolicy(ctx, p.ID)))
	})
}

func TestNullPremiumReadsAsZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var clientID records.ClientID
	session(t, store, func(st records.Store) {
		clientID = addClient(t, st, "Jai").ID
	})

	// GIVEN: Rows written by other tools with NULL and garbage premiums
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO policies (client_id, policy_number, insurance_company, premium)
		VALUES (?, 'NULL-P', 'x', NULL), (?, 'BAD-P', 'x', 'abc')`, clientID, clientID)
	require.NoError(t, err)

	// THEN: Both read back as zero
	session(t, store, func(st records.Store) {
		got, err := st.FindPolicies(ctx, "-P")
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, l := range got {
			assert.True(t, l.Premium.IsZero(), l.PolicyNumber)
		}
	})
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uploaded := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

	session(t, store, func(st records.Store) {
		c := addClient(t, st, "Kiran")
		doc := &records.Document{ClientID: c.ID, Filename: "scan.jpg", StorageKey: "abc.jpg", UploadedAt: uploaded}
		require.NoError(t, st.CreateDocument(ctx, doc))

		require.NoError(t, st.RenameDocument(ctx, doc.ID, "Aadhaar front"))

		docs, err := st.DocumentsByClient(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Aadhaar front", docs[0].Filename)
		assert.Equal(t, "abc.jpg", docs[0].StorageKey)
		assert.True(t, uploaded.Equal(docs[0].UploadedAt))

		err = st.CreateDocument(ctx, &records.Document{ClientID: 999, Filename: "x", StorageKey: "y"})
		assert.True(t, records.IsNotFound(err))

		require.NoError(t, st.DeleteDocument(ctx, doc.ID))
		assert.True(t, records.IsNotFound(st.RenameDocument(ctx, doc.ID, "again")))
	})
}

func TestGetDocument_CorruptUploadTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var clientID records.ClientID
	session(t, store, func(st records.Store) {
		clientID = addClient(t, st, "Lata").ID
	})

	// GIVEN: A document row with an unreadable upload time
	res, err := store.db.ExecContext(ctx, `
		INSERT INTO documents (client_id, filename, storage_key, uploaded_at)
		VALUES (?, 'scan.pdf', 'k.pdf', 'yesterday')`, clientID)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	// THEN: Reading it fails instead of reporting a zero time
	session(t, store, func(st records.Store) {
		_, err := st.GetDocument(ctx, records.DocumentID(id))
		require.Error(t, err)
		assert.False(t, records.IsNotFound(err))
		assert.Contains(t, err.Error(), "yesterday")

		_, err = st.DocumentsByClient(ctx, clientID)
		assert.Error(t, err)
	})
}

// =============================================================================
// AGENCIES
// =============================================================================

func TestCreateAgency_DuplicateIsConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		require.NoError(t, st.CreateAgency(ctx, &records.Agency{Name: "Shree Agency"}))

		// WHEN: Adding the same name again
		err := st.CreateAgency(ctx, &records.Agency{Name: "Shree Agency"})

		// THEN: Conflict, and the table is unchanged
		var ce *records.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "Shree Agency", ce.Name)

		list, err := st.ListAgencies(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestUpdateAgency_RenamesPolicies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session(t, store, func(st records.Store) {
		// GIVEN: An agency named on a policy
		a := &records.Agency{Name: "Shree Agency"}
		require.NoError(t, st.CreateAgency(ctx, a))
		taken := &records.Agency{Name: "Om Agency"}
		require.NoError(t, st.CreateAgency(ctx, taken))
		c := addClient(t, st, "Lata")
		p := addPolicy(t, st, c.ID, "P-1", "")

		// WHEN: Renaming the agency
		a.Name = "Shree Motors"
		require.NoError(t, st.UpdateAgency(ctx, a))

		// THEN: The policy follows
		got, err := st.GetPolicy(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shree Motors", got.Agency)

		// AND: Renaming onto a taken name is a conflict that changes nothing
		a.Name = "Om Agency"
		err = st.UpdateAgency(ctx, a)
		assert.ErrorIs(t, err, records.ErrConflict)
		stored, err := st.GetAgency(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shree Motors", stored.Name)
		got, err = st.GetPolicy(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shree Motors", got.Agency)

		// AND: Unknown agencies are NotFound
		assert.True(t, records.IsNotFound(st.UpdateAgency(ctx, &records.Agency{ID: 999, Name: "x"})))
		require.NoError(t, st.DeleteAgency(ctx, taken.ID))
		assert.True(t, records.IsNotFound(st.DeleteAgency(ctx, taken.ID)))
	})
}

func TestUpdateAgency_RollsBackOnPolicyFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := NewFromDB(db)

	// GIVEN: The policy update fails after the agency row was renamed
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM agencies WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Shree Agency"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE agencies SET name = ? WHERE id = ?")).
		WithArgs("Shree Motors", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE policies SET agency = ? WHERE agency = ?")).
		WithArgs("Shree Motors", "Shree Agency").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	// WHEN: Renaming
	err = store.WithSession(context.Background(), func(st records.Store) error {
		return st.UpdateAgency(context.Background(), &records.Agency{ID: 1, Name: "Shree Motors"})
	})

	// THEN: The error surfaces as a store failure and the transaction is rolled back
	require.Error(t, err)
	assert.False(t, records.IsClientError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAgency_UniqueViolationFromDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := NewFromDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM agencies WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Shree Agency"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE agencies SET name = ? WHERE id = ?")).
		WillReturnError(errors.New("UNIQUE constraint failed: agencies.name"))
	mock.ExpectRollback()

	err = store.WithSession(context.Background(), func(st records.Store) error {
		return st.UpdateAgency(context.Background(), &records.Agency{ID: 1, Name: "Om Agency"})
	})

	assert.ErrorIs(t, err, records.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
