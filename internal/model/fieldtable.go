package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldCode associates a borrower attribute name with the Encompass field id
// used when pushing updates.
type FieldCode struct {
	Attribute string `yaml:"attribute" json:"attribute"`
	Code      string `yaml:"code" json:"code"`
}

// FieldTable is the fixed attribute-to-field-code mapping, loaded once at
// startup and read-only afterward. Entry order drives the order of pushed
// field updates.
type FieldTable struct {
	entries []FieldCode
	byAttr  map[string]string
}

// NewFieldTable builds an indexed table from ordered entries. Later entries
// with a duplicate attribute are ignored.
func NewFieldTable(entries []FieldCode) *FieldTable {
	t := &FieldTable{
		byAttr: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if _, exists := t.byAttr[e.Attribute]; exists {
			continue
		}
		t.entries = append(t.entries, e)
		t.byAttr[e.Attribute] = e.Code
	}
	return t
}

// DefaultFieldTable returns the built-in borrower attribute mapping.
func DefaultFieldTable() *FieldTable {
	return NewFieldTable([]FieldCode{
		{Attribute: "first_name", Code: "4000"},
		{Attribute: "middle_name", Code: "4001"},
		{Attribute: "last_name", Code: "4002"},
		{Attribute: "suffix", Code: "4003"},
		{Attribute: "ssn", Code: "65"},
		{Attribute: "home_phone", Code: "66"},
		{Attribute: "date_of_birth", Code: "1402"},
		{Attribute: "email", Code: "1240"},
		{Attribute: "cell_phone", Code: "1490"},
	})
}

// LoadFieldTable reads a field table from a YAML file of
// {attribute, code} entries.
func LoadFieldTable(path string) (*FieldTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read field table %s", path)
	}
	var entries []FieldCode
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "model: parse field table %s", path)
	}
	if len(entries) == 0 {
		return nil, eris.Errorf("model: field table %s is empty", path)
	}
	return NewFieldTable(entries), nil
}

// Code returns the field code for an attribute, with ok reporting whether
// the attribute is mapped.
func (t *FieldTable) Code(attribute string) (string, bool) {
	code, ok := t.byAttr[attribute]
	return code, ok
}

// Entries returns the table entries in definition order.
func (t *FieldTable) Entries() []FieldCode {
	return t.entries
}

// Len returns the number of mapped attributes.
func (t *FieldTable) Len() int {
	return len(t.entries)
}
