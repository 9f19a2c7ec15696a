package repository

import (
	"fmt"
	"math"
	"testing"

	"clientrepo/internal/domain"

	"github.com/stretchr/testify/assert"
)

func makeClients(n int) []domain.Client {
	out := make([]domain.Client, n)
	for i := range out {
		out[i] = domain.Client{ID: domain.IntID(int64(i + 1)), Surname: fmt.Sprintf("S%02d", i+1), Firstname: "F"}
	}
	return out
}

func TestPaginate(t *testing.T) {
	clients := makeClients(25)

	tests := []struct {
		name      string
		page      int
		size      int
		wantLen   int
		wantFirst int64
	}{
		{"first page", 1, 10, 10, 1},
		{"last partial page", 3, 10, 5, 21},
		{"past the end", 4, 10, 0, 0},
		{"zero page", 0, 10, 0, 0},
		{"negative size", 1, -1, 0, 0},
		{"zero size", 1, 0, 0, 0},
		{"offset overflows int", math.MaxInt/2 + 2, 2, 0, 0},
		{"huge page and size", math.MaxInt, math.MaxInt, 0, 0},
		{"huge size", 1, math.MaxInt, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(clients, tt.page, tt.size)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, domain.IntID(tt.wantFirst), got[0].ID)
			}
		})
	}
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		size   int
		want   int
		wantOK bool
	}{
		{"first page", 1, 10, 0, true},
		{"third page", 3, 10, 20, true},
		{"zero page", 0, 10, 0, false},
		{"zero size", 1, 0, 0, false},
		{"last representable page", math.MaxInt / 2, 2, math.MaxInt - 3, true},
		{"overflow", math.MaxInt/2 + 2, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PageOffset(tt.page, tt.size)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextID(t *testing.T) {
	assert.Equal(t, domain.IntID(1), NextID(nil))

	clients := []domain.Client{
		{ID: domain.IntID(4)},
		{ID: domain.TokenID("0123456789abcdef")},
		{ID: domain.IntID(2)},
	}
	assert.Equal(t, domain.IntID(5), NextID(clients))
}

func TestIndexOf(t *testing.T) {
	clients := makeClients(3)
	assert.Equal(t, 1, IndexOf(clients, domain.IntID(2)))
	assert.Equal(t, -1, IndexOf(clients, domain.IntID(9)))
}
