package crowdfund

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/crowdfund/errors"
)

// The data section may hold any byte, including a newline.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition names who may authorize an action, as
//
//   <extension>/<type>/<data>
//
// A signature condition holds a public key. A campaign escrow holds the
// campaign id and can only be satisfied by the campaign handlers.
type Condition []byte

// NewCondition joins the three sections of a condition.
func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+len(data)+2)
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits the condition into its sections.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

// Validate returns an error for a malformed condition.
func (c Condition) Validate() error {
	_, _, _, err := c.Parse()
	return err
}

// Address returns the address controlled by this condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

// Equals returns true if both conditions are identical.
func (c Condition) Equals(o Condition) bool {
	return bytes.Equal(c, o)
}

// String prints the data section in hex, as it is usually binary.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

// MarshalJSON encodes the condition as its String form.
func (c Condition) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal("")
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes the String form of a condition.
func (c *Condition) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	parsed, err := parseCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// parseCondition reads the String form of a condition. An empty string is
// a nil condition.
func parseCondition(s string) (Condition, error) {
	if s == "" {
		return nil, nil
	}
	sections := strings.Split(s, "/")
	if len(sections) != 3 {
		return nil, errors.Wrap(errors.ErrInput, "condition must have three sections")
	}
	data, err := hex.DecodeString(sections[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "condition data: %s", err)
	}
	return NewCondition(sections[0], sections[1], data), nil
}
