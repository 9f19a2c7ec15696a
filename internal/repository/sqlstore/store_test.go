package sqlstore

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"clientrepo/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestStore creates an in-memory SQLite store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := New(Fixed(db), SQLite, nil)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func sampleClient(surname string) domain.Client {
	return domain.Client{
		Surname:     surname,
		Firstname:   "Ivan",
		FathersName: "Petrovich",
		BirthDate:   domain.Date(1980, time.December, 31),
		PhoneNumber: "+79001234567",
		Passport:    "4500 111222",
		Email:       "ivan@example.com",
		Balance:     domain.Float(250.75),
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestRebind(t *testing.T) {
	q := `UPDATE clients SET a = ?, b = ? WHERE id = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `UPDATE clients SET a = $1, b = $2 WHERE id = $3`, Postgres.rebind(q))
}

func TestNullDateScan(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *time.Time
	}{
		{"nil", nil, nil},
		{"time", time.Date(1990, 5, 1, 15, 4, 5, 0, time.FixedZone("X", 3600)), domain.Date(1990, time.May, 1)},
		{"text", "1990-05-01", domain.Date(1990, time.May, 1)},
		{"text with time", "1990-05-01T00:00:00Z", domain.Date(1990, time.May, 1)},
		{"bytes", []byte("1990-05-01"), domain.Date(1990, time.May, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d nullDate
			require.NoError(t, d.Scan(tt.input))
			got := d.ptr()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
		})
	}

	var d nullDate
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("yesterday"))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("pgx")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name)

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name)

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

// ============================================================================
// SQLite Store Tests
// ============================================================================

func TestAddAndGetByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Add(ctx, sampleClient("Ivanov"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.IntID(1), created.ID)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ivanov", got.Surname)
	assert.Equal(t, "Petrovich", got.FathersName)
	assert.Equal(t, "4500 111222", got.Passport)
	assert.Equal(t, 250.75, *got.Balance)
	require.NotNil(t, got.BirthDate)
	assert.True(t, domain.Date(1980, time.December, 31).Equal(*got.BirthDate))
}

func TestAbsentOptionalFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Add(ctx, domain.Client{Surname: "Orlov", Firstname: "Oleg"})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BirthDate)
	assert.Nil(t, got.Balance)
	assert.Empty(t, got.Email)
}

func TestGetByIDMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.GetByID(ctx, domain.IntID(99))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetByID(ctx, domain.TokenID("0123456789abcdef"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadAllAndPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := s.Add(ctx, sampleClient(name))
		require.NoError(t, err)
	}

	all, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "A", all[0].Surname)

	page, err := s.GetPage(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Surname)
	assert.Equal(t, "D", page[1].Surname)

	page, err = s.GetPage(ctx, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = s.GetPage(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestAddReturnsStoredRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := sampleClient("Ivanov")
	evening := time.Date(1990, time.May, 1, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	in.BirthDate = &evening

	created, err := s.Add(ctx, in)
	require.NoError(t, err)

	stored, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	if diff := cmp.Diff(*stored, *created); diff != "" {
		t.Errorf("Add result differs from stored row (-stored +returned):\n%s", diff)
	}
	assert.True(t, domain.Date(1990, time.May, 1).Equal(*created.BirthDate))
}

func TestReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	created, err := s.Add(ctx, sampleClient("Ivanov"))
	require.NoError(t, err)

	updated := sampleClient("Sidorov")
	updated.Balance = domain.Float(0)
	ok, err := s.ReplaceByID(ctx, created.ID, updated)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := s.GetByID(ctx, created.ID)
	assert.Equal(t, "Sidorov", got.Surname)
	require.NotNil(t, got.Balance)
	assert.Zero(t, *got.Balance)

	ok, err = s.ReplaceByID(ctx, domain.IntID(404), updated)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================================================
// PostgreSQL Dialect Tests (sqlmock)
// ============================================================================

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(Fixed(db), Postgres, nil), mock
}

func TestPostgresGetPage(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "surname", "firstname", "fathers_name", "birth_date", "phone_number", "pasport", "email", "balance"}).
		AddRow(int64(3), "Ivanov", "Ivan", nil, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), nil, nil, "i@example.com", "12.50")
	mock.ExpectQuery(`SELECT .+ FROM clients ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 20).
		WillReturnRows(rows)

	page, err := s.GetPage(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, domain.IntID(3), page[0].ID)
	assert.Equal(t, "i@example.com", page[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddUsesReturning(t *testing.T) {
	s, mock := newMockStore(t)

	// NUMERIC(12,2) rounds the balance; the returned client must show the stored value
	mock.ExpectQuery(`INSERT INTO clients .+ VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)\s+RETURNING id, surname, firstname, fathers_name, birth_date, phone_number, pasport, email, balance`).
		WithArgs("Ivanov", "Ivan", sql.NullString{}, sql.NullString{String: "1990-05-01", Valid: true},
			sql.NullString{}, sql.NullString{}, sql.NullString{}, sql.NullFloat64{Float64: 5.004, Valid: true}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "surname", "firstname", "fathers_name", "birth_date", "phone_number", "pasport", "email", "balance"}).
			AddRow(int64(17), "Ivanov", "Ivan", nil, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), nil, nil, nil, "5.00"))

	created, err := s.Add(context.Background(), domain.Client{
		Surname:   "Ivanov",
		Firstname: "Ivan",
		BirthDate: domain.Date(1990, time.May, 1),
		Balance:   domain.Float(5.004),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IntID(17), created.ID)
	assert.Equal(t, "Ivanov", created.Surname)
	require.NotNil(t, created.Balance)
	assert.Equal(t, 5.0, *created.Balance)
	require.NotNil(t, created.BirthDate)
	assert.True(t, domain.Date(1990, time.May, 1).Equal(*created.BirthDate))
	assert.Empty(t, created.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetPageOffsetOverflow(t *testing.T) {
	s, mock := newMockStore(t)

	page, err := s.GetPage(context.Background(), math.MaxInt/2+2, 2)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE clients .+ WHERE id = \$9`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.ReplaceByID(context.Background(), domain.IntID(5), sampleClient("Ivanov"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresErrorsAreWrapped(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM clients WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrConnDone)

	_, err := s.DeleteByID(context.Background(), domain.IntID(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "db error")
	require.NoError(t, mock.ExpectationsWereMet())
}
