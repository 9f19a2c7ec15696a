package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"clientrepo/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleClients() []domain.Client {
	return []domain.Client{
		{
			ID:          domain.IntID(1),
			Surname:     "Ivanov",
			Firstname:   "Ivan",
			FathersName: "Ivanovich",
			BirthDate:   domain.Date(1985, time.March, 12),
			PhoneNumber: "+7 900 000 00 00",
			Passport:    "4500 123456",
			Email:       "ivanov@example.com",
			Balance:     domain.Float(1500.5),
		},
		{
			ID:        domain.TokenID("0123456789abcdef"),
			Surname:   "Smirnova",
			Firstname: "Anna",
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Encode(sampleClients(), &buf))

			got, err := c.Decode(&buf)
			require.NoError(t, err)
			if diff := cmp.Diff(sampleClients(), got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSONAbsentFieldsAreNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Encode(sampleClients()[1:], &buf))

	out := buf.String()
	assert.Contains(t, out, `"id": "0123456789abcdef"`)
	assert.Contains(t, out, `"birth_date": null`)
	assert.Contains(t, out, `"balance": null`)
	assert.Contains(t, out, `"pasport": null`)
}

func TestJSONNumericIDAndDate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Encode(sampleClients()[:1], &buf))

	out := buf.String()
	assert.Contains(t, out, `"id": 1,`)
	assert.Contains(t, out, `"birth_date": "12.03.1985"`)
	assert.Contains(t, out, `"balance": 1500.5`)
}

func TestYAMLKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Encode(sampleClients()[:1], &buf))

	out := buf.String()
	keys := []string{"id:", "surname:", "firstname:", "fathers_name:", "birth_date:", "phone_number:", "pasport:", "email:", "balance:"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(out, k)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		got, err := c.Decode(strings.NewReader(""))
		require.NoError(t, err, c.Format())
		assert.Empty(t, got, c.Format())
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := NewJSONCodec().Decode(strings.NewReader(`{"not": "an array"`))
	assert.Error(t, err)

	_, err = NewYAMLCodec().Decode(strings.NewReader("- id: 1\n  birth_date: 1985-03-12\n"))
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	c, err := ForFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Format())

	_, err = ForFormat("xml")
	assert.Error(t, err)
}
