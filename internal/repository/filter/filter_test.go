package filter

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"
	"clientrepo/internal/repository/file"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is a minimal Repository without sort support
type memRepo struct {
	clients []domain.Client
}

func (m *memRepo) ReadAll(ctx context.Context) ([]domain.Client, error) {
	out := make([]domain.Client, len(m.clients))
	copy(out, m.clients)
	return out, nil
}

func (m *memRepo) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	if i := repository.IndexOf(m.clients, id); i >= 0 {
		c := m.clients[i]
		return &c, nil
	}
	return nil, nil
}

func (m *memRepo) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	return repository.Paginate(m.clients, page, size), nil
}

func (m *memRepo) Count(ctx context.Context) (int, error) { return len(m.clients), nil }

func (m *memRepo) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	c.ID = repository.NextID(m.clients)
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *memRepo) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	i := repository.IndexOf(m.clients, id)
	if i < 0 {
		return false, nil
	}
	c.ID = id
	m.clients[i] = c
	return true, nil
}

func (m *memRepo) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	i := repository.IndexOf(m.clients, id)
	if i < 0 {
		return false, nil
	}
	m.clients = append(m.clients[:i], m.clients[i+1:]...)
	return true, nil
}

func fixture() *memRepo {
	return &memRepo{clients: []domain.Client{
		{ID: domain.IntID(1), Surname: "Ivanov", Firstname: "A", Email: "b@x.io", Balance: domain.Float(100)},
		{ID: domain.IntID(2), Surname: "ivashin", Firstname: "B", Balance: domain.Float(0)},
		{ID: domain.IntID(3), Surname: "Petrov", Firstname: "C", Email: "a@x.io"},
		{ID: domain.IntID(4), Surname: "Orlov", Firstname: "D", Email: "c@x.io", Balance: domain.Float(50)},
		{ID: domain.IntID(5), Surname: "Иванов", Firstname: "E", Balance: domain.Float(500)},
	}}
}

func ids(clients []domain.Client) []int64 {
	out := make([]int64, len(clients))
	for i, c := range clients {
		n, _ := c.ID.Int()
		out[i] = n
	}
	return out
}

func TestBalanceRange(t *testing.T) {
	clients := fixture().clients

	tests := []struct {
		name string
		lo   *float64
		hi   *float64
		want []int64
	}{
		{"inclusive bounds", domain.Float(0), domain.Float(100), []int64{1, 2, 4}},
		{"min only", domain.Float(100), nil, []int64{1, 5}},
		{"max only", nil, domain.Float(50), []int64{2, 4}},
		{"no bounds keeps absent", nil, nil, []int64{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceRange(tt.lo, tt.hi).Apply(clients)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("thousand to five thousand", func(t *testing.T) {
		var spread []domain.Client
		for i, b := range []float64{500, 1500, 3000, 5000, 9000} {
			spread = append(spread, domain.Client{ID: domain.IntID(int64(i + 1)), Surname: "S", Firstname: "F", Balance: domain.Float(b)})
		}
		got := BalanceRange(domain.Float(1000), domain.Float(5000)).Apply(spread)
		assert.Equal(t, []int64{2, 3, 4}, ids(got))
	})
}

func TestEmailPresence(t *testing.T) {
	clients := fixture().clients
	assert.Equal(t, []int64{1, 3, 4}, ids(EmailPresence(true).Apply(clients)))
	assert.Equal(t, []int64{2, 5}, ids(EmailPresence(false).Apply(clients)))
}

func TestSurnamePrefix(t *testing.T) {
	clients := fixture().clients
	assert.Equal(t, []int64{1, 2}, ids(SurnamePrefix("IVA").Apply(clients)))
	assert.Equal(t, []int64{5}, ids(SurnamePrefix("ива").Apply(clients)))
	assert.Len(t, SurnamePrefix("").Apply(clients), 5)
}

func TestSortKeys(t *testing.T) {
	clients := fixture().clients
	assert.Equal(t, []int64{1, 4, 3, 2, 5}, ids(BySurname(false).Apply(clients)))
	assert.Equal(t, []int64{2, 5, 3, 1, 4}, ids(ByEmail(false).Apply(clients)))
	assert.Equal(t, []int64{2, 3, 4, 1, 5}, ids(ByBalance(false).Apply(clients)))
	assert.Equal(t, []int64{5, 1, 4, 2, 3}, ids(ByBalance(true).Apply(clients)))
}

func TestDecoratorDoesNotMutateInner(t *testing.T) {
	ctx := context.Background()
	inner := fixture()
	d := New(inner).AddFilter(EmailPresence(true)).SetSort(ByEmail(false))

	got, err := d.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 4}, ids(got))

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(inner.clients))
}

func TestDecoratorPageAndCountFollowView(t *testing.T) {
	ctx := context.Background()
	d := New(fixture()).
		AddFilter(BalanceRange(domain.Float(0), nil)).
		SetSort(ByBalance(true))

	n, err := d.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	page, err := d.GetPage(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, domain.IntID(4), page[0].ID)
	assert.Equal(t, domain.IntID(2), page[1].ID)
}

func TestDecoratorSeesFreshData(t *testing.T) {
	ctx := context.Background()
	inner := fixture()
	d := New(inner).AddFilter(SurnamePrefix("iv"))

	n, _ := d.Count(ctx)
	assert.Equal(t, 2, n)

	_, err := d.Add(ctx, domain.Client{Surname: "Ivlev", Firstname: "F"})
	require.NoError(t, err)

	n, _ = d.Count(ctx)
	assert.Equal(t, 3, n)
}

func TestDecoratorClear(t *testing.T) {
	ctx := context.Background()
	d := New(fixture()).AddFilter(EmailPresence(true)).SetSort(BySurname(false))
	assert.Len(t, d.Filters(), 1)
	assert.NotNil(t, d.Sort())

	d.ClearFilters()
	d.ClearSort()

	got, _ := d.ReadAll(ctx)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
	assert.Nil(t, d.Sort())
}

func TestDecoratorDelegatesWrites(t *testing.T) {
	ctx := context.Background()
	inner := fixture()
	d := New(inner).AddFilter(EmailPresence(true))

	c, err := d.GetByID(ctx, domain.IntID(2))
	require.NoError(t, err)
	require.NotNil(t, c, "GetByID is not filtered")

	ok, err := d.DeleteByID(ctx, domain.IntID(2))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, inner.clients, 4)

	ok, err = d.ReplaceByID(ctx, domain.IntID(3), domain.Client{Surname: "New", Firstname: "N"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecoratorSortByPrimaryField(t *testing.T) {
	ctx := context.Background()

	_, err := New(fixture()).SortByPrimaryField(ctx, false)
	assert.ErrorIs(t, err, repository.ErrSortUnsupported)

	repo := file.NewYAML(filepath.Join(t.TempDir(), "clients.yaml"))
	ordering, err := New(repo).SortByPrimaryField(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderingPersisted, ordering)
}

func TestParseQuery(t *testing.T) {
	crit, err := ParseQuery(url.Values{
		"surname":     {"Iv"},
		"min_balance": {"10"},
		"has_email":   {"true"},
		"sort":        {"balance"},
		"order":       {"desc"},
	})
	require.NoError(t, err)
	require.Len(t, crit.Filters, 3)
	require.NotNil(t, crit.Sort)
	assert.Equal(t, "balance desc", crit.Sort.String())

	got, _ := crit.Apply(New(fixture())).ReadAll(context.Background())
	assert.Equal(t, []int64{1}, ids(got))

	empty, err := ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	bad := []url.Values{
		{"min_balance": {"abc"}},
		{"min_balance": {"10"}, "max_balance": {"5"}},
		{"has_email": {"maybe"}},
		{"sort": {"phone"}},
		{"order": {"sideways"}},
		{"min_balance": {"NaN"}},
		{"max_balance": {"Inf"}},
		{"min_balance": {"-inf"}},
	}
	for _, v := range bad {
		_, err := ParseQuery(v)
		assert.Error(t, err, v.Encode())
	}
}
