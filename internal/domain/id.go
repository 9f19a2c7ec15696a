package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TokenLength is the length of an opaque client token
const TokenLength = 16

// ErrInvalidID is returned when a string is neither a positive integer nor a token
var ErrInvalidID = errors.New("invalid client id")

// ID identifies a client. The zero value means "not assigned".
type ID struct {
	num   int64
	token string
}

// IntID returns a numeric identity
func IntID(n int64) ID {
	return ID{num: n}
}

// TokenID returns a token identity. The token is not validated.
func TokenID(s string) ID {
	return ID{token: s}
}

// NewToken generates a fresh 16-character token identity
func NewToken() ID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ID{token: hex[:TokenLength]}
}

// ParseID parses the textual form of an ID
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, ErrInvalidID
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		return IntID(n), nil
	}
	if len(s) == TokenLength {
		return TokenID(s), nil
	}
	return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
}

// Int returns the numeric form and whether the ID is numeric
func (id ID) Int() (int64, bool) {
	return id.num, id.token == "" && id.num > 0
}

// Equal reports whether two IDs are identical
func (id ID) Equal(other ID) bool {
	return id == other
}

// IsZero reports whether the ID is unassigned
func (id ID) IsZero() bool {
	return id.num == 0 && id.token == ""
}

func (id ID) String() string {
	if id.token != "" {
		return id.token
	}
	if id.num == 0 {
		return ""
	}
	return strconv.FormatInt(id.num, 10)
}

// MarshalJSON writes numeric IDs as bare numbers and tokens as strings
func (id ID) MarshalJSON() ([]byte, error) {
	if id.token != "" {
		return json.Marshal(id.token)
	}
	if id.num == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

// UnmarshalJSON accepts a number, a string or null
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalYAML mirrors MarshalJSON
func (id ID) MarshalYAML() (any, error) {
	if id.token != "" {
		return id.token, nil
	}
	if id.num == 0 {
		return nil, nil
	}
	return id.num, nil
}

// UnmarshalYAML accepts an integer or string scalar
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar, got kind %d", ErrInvalidID, value.Kind)
	}
	if value.Tag == "!!null" {
		*id = ID{}
		return nil
	}
	parsed, err := ParseID(value.Value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
