package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Role is one of the 12 theme colour slots of an OOXML colour scheme.
type Role string

const (
	Dk1      Role = "dk1"
	Lt1      Role = "lt1"
	Dk2      Role = "dk2"
	Lt2      Role = "lt2"
	Accent1  Role = "accent1"
	Accent2  Role = "accent2"
	Accent3  Role = "accent3"
	Accent4  Role = "accent4"
	Accent5  Role = "accent5"
	Accent6  Role = "accent6"
	Hlink    Role = "hlink"
	FolHlink Role = "folHlink"
)

// Roles lists every role in the canonical colour-scheme order.
var Roles = []Role{Dk1, Lt1, Dk2, Lt2, Accent1, Accent2, Accent3, Accent4, Accent5, Accent6, Hlink, FolHlink}

// AccentRoles lists accent1..accent6 in order.
var AccentRoles = []Role{Accent1, Accent2, Accent3, Accent4, Accent5, Accent6}

var roleLabels = map[Role]string{
	Dk1:      "Dark 1 (Text)",
	Lt1:      "Light 1 (Background)",
	Dk2:      "Dark 2",
	Lt2:      "Light 2",
	Accent1:  "Accent 1",
	Accent2:  "Accent 2",
	Accent3:  "Accent 3",
	Accent4:  "Accent 4",
	Accent5:  "Accent 5",
	Accent6:  "Accent 6",
	Hlink:    "Hyperlink",
	FolHlink: "Followed Link",
}

// Label is the editor-facing name of the role.
func (r Role) Label() string {
	return roleLabels[r]
}

// Accent returns the accent role for index i, cycling through all six.
func Accent(i int) Role {
	i %= len(AccentRoles)
	if i < 0 {
		i += len(AccentRoles)
	}
	return AccentRoles[i]
}

// ParseRole matches a role name exactly (role names are case-sensitive in OOXML).
func ParseRole(name string) (Role, error) {
	for _, r := range Roles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// NormalizeHex accepts "RRGGBB" or "#RRGGBB" in any case and returns "#RRGGBB".
func NormalizeHex(s string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex("#" + raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return strings.ToUpper(c.Hex()), nil
}

// OOXMLHex renders a colour the way DrawingML srgbClr wants it: "RRGGBB".
func OOXMLHex(s string) string {
	return strings.ToUpper(strings.TrimPrefix(s, "#"))
}

// ThemeColors is the fixed 12-slot palette. Values are canonical "#RRGGBB".
type ThemeColors struct {
	Dk1      string `json:"dk1"`
	Lt1      string `json:"lt1"`
	Dk2      string `json:"dk2"`
	Lt2      string `json:"lt2"`
	Accent1  string `json:"accent1"`
	Accent2  string `json:"accent2"`
	Accent3  string `json:"accent3"`
	Accent4  string `json:"accent4"`
	Accent5  string `json:"accent5"`
	Accent6  string `json:"accent6"`
	Hlink    string `json:"hlink"`
	FolHlink string `json:"folHlink"`
}

func (c *ThemeColors) slot(r Role) *string {
	switch r {
	case Dk1:
		return &c.Dk1
	case Lt1:
		return &c.Lt1
	case Dk2:
		return &c.Dk2
	case Lt2:
		return &c.Lt2
	case Accent1:
		return &c.Accent1
	case Accent2:
		return &c.Accent2
	case Accent3:
		return &c.Accent3
	case Accent4:
		return &c.Accent4
	case Accent5:
		return &c.Accent5
	case Accent6:
		return &c.Accent6
	case Hlink:
		return &c.Hlink
	case FolHlink:
		return &c.FolHlink
	}
	return nil
}

// Get resolves a role name to its value. Unknown roles and empty slots report false.
func (c ThemeColors) Get(role string) (string, bool) {
	p := c.slot(Role(role))
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// Color is Get for a typed role; it returns "" for unknown roles.
func (c ThemeColors) Color(r Role) string {
	v, _ := c.Get(string(r))
	return v
}

// Set validates and stores a single slot.
func (c *ThemeColors) Set(role, value string) error {
	r, err := ParseRole(role)
	if err != nil {
		return err
	}
	hex, err := NormalizeHex(value)
	if err != nil {
		return fmt.Errorf("%s: %w", r, err)
	}
	*c.slot(r) = hex
	return nil
}

// Validate checks that every slot holds a 6-digit hex colour.
func (c ThemeColors) Validate() error {
	for _, r := range Roles {
		if _, err := NormalizeHex(*c.slot(r)); err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
	}
	return nil
}

// Map returns role name to value for all 12 slots.
func (c ThemeColors) Map() map[string]string {
	out := make(map[string]string, len(Roles))
	for _, r := range Roles {
		out[string(r)] = *c.slot(r)
	}
	return out
}

// ParseThemeColors decodes a palette JSON object. All 12 roles must be
// present and valid; unknown keys are ignored.
func ParseThemeColors(data []byte) (ThemeColors, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ThemeColors{}, fmt.Errorf("decode palette: %w", err)
	}
	var out ThemeColors
	for _, r := range Roles {
		v, ok := raw[string(r)]
		if !ok {
			return ThemeColors{}, fmt.Errorf("palette missing %s", r)
		}
		if err := out.Set(string(r), v); err != nil {
			return ThemeColors{}, err
		}
	}
	return out, nil
}

// MappingEntry maps a placeholder literal found in preview markup to a role name.
// The role is kept verbatim so that drifted names can be skipped at render time.
type MappingEntry struct {
	Placeholder string `json:"placeholder"`
	Role        string `json:"role"`
}

// ColorMapping is the ordered content of a deck's colors.json
// ({"colorMappings": {"#FF0000": "accent1", ...}}). Entry order follows the
// document, which matters because replacements are applied sequentially.
type ColorMapping struct {
	Entries []MappingEntry
}

func (m *ColorMapping) UnmarshalJSON(data []byte) error {
	var outer struct {
		ColorMappings json.RawMessage `json:"colorMappings"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	m.Entries = nil
	body := bytes.TrimSpace(outer.ColorMappings)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("colorMappings: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var role string
		if err := dec.Decode(&role); err != nil {
			return fmt.Errorf("colorMappings[%q]: %w", key, err)
		}
		m.Entries = append(m.Entries, MappingEntry{Placeholder: key, Role: role})
	}
	_, err = dec.Token()
	return err
}

func (m ColorMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"colorMappings":{`)
	for i, e := range m.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Placeholder)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Role)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// ParseColorMapping decodes a colors.json document.
func ParseColorMapping(data []byte) (ColorMapping, error) {
	var m ColorMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return ColorMapping{}, fmt.Errorf("decode color mapping: %w", err)
	}
	return m, nil
}
