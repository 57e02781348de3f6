// Package themexml renders a palette as a DrawingML theme part
// (ppt/theme/theme1.xml).
package themexml

import (
	"bytes"
	"crypto/rand"
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"colorslide/model"
)

// ContentType is the media type of a standalone theme part.
const ContentType = "application/vnd.openxmlformats-officedocument.theme+xml"

//go:embed theme.xml.tmpl
var themeTemplate string

var tmpl = template.Must(template.New("theme").Funcs(template.FuncMap{
	"xml": escape,
}).Parse(themeTemplate))

type schemeColor struct {
	Role model.Role
	Hex  string
}

type document struct {
	Name     string
	Colors   []schemeColor
	ThemeID  string
	ThemeVID string
}

// Serializer renders theme parts. Rand supplies the entropy for the two
// themeFamily GUIDs; nil means crypto/rand.
type Serializer struct {
	Rand io.Reader
}

// Serialize renders with the default Serializer.
func Serialize(name string, colors model.ThemeColors) ([]byte, error) {
	return Serializer{}.Serialize(name, colors)
}

// Serialize emits all 12 roles in scheme order. folHlink carries the
// caller's folHlink value.
func (s Serializer) Serialize(name string, colors model.ThemeColors) ([]byte, error) {
	if err := colors.Validate(); err != nil {
		return nil, fmt.Errorf("serialize theme: %w", err)
	}

	doc := document{Name: name}
	for _, r := range model.Roles {
		doc.Colors = append(doc.Colors, schemeColor{Role: r, Hex: model.OOXMLHex(colors.Color(r))})
	}

	var err error
	if doc.ThemeID, err = s.guid(); err != nil {
		return nil, err
	}
	if doc.ThemeVID, err = s.guid(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render theme: %w", err)
	}
	return buf.Bytes(), nil
}

// guid is a random (version 4, RFC 4122 variant) UUID in the braced upper-case
// form Office writes.
func (s Serializer) guid() (string, error) {
	r := s.Rand
	if r == nil {
		r = rand.Reader
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("theme guid: %w", err)
	}
	return "{" + strings.ToUpper(id.String()) + "}", nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
