package catalog

import (
	"fmt"
	"strings"
)

// Kind distinguishes base tables from derived relations.
type Kind string

const (
	KindTable Kind = "TABLE"
	KindView  Kind = "VIEW"
)

// Type is the semantic bucket a native column type maps into.
type Type string

const (
	TypeInteger   Type = "INTEGER"
	TypeDecimal   Type = "DECIMAL"
	TypeText      Type = "TEXT"
	TypeDate      Type = "DATE"
	TypeTimestamp Type = "TIMESTAMP"
	TypeBoolean   Type = "BOOLEAN"
	TypeOther     Type = "OTHER"
)

// TableRow is one raw table listing record as read from a source database.
type TableRow struct {
	Name string
	Kind string
}

// ColumnRow is one raw column record. Table holds the qualified table name.
type ColumnRow struct {
	Table      string
	Name       string
	DataType   string
	Nullable   bool
	Position   int
	PrimaryKey bool
}

// ForeignKeyRow is one raw single-column constraint record. Composite
// constraints arrive as one row per column pair.
type ForeignKeyRow struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// RawSchema bundles the rows of one metadata read before normalization.
type RawSchema struct {
	Tables      []TableRow
	Columns     []ColumnRow
	ForeignKeys []ForeignKeyRow
}

// Merge appends the rows of other onto r. Used when transferring more
// than one database schema into a single model.
func (r *RawSchema) Merge(other RawSchema) {
	r.Tables = append(r.Tables, other.Tables...)
	r.Columns = append(r.Columns, other.Columns...)
	r.ForeignKeys = append(r.ForeignKeys, other.ForeignKeys...)
}

// PruneForeignKeys drops constraint rows whose endpoints are not part of
// the listed tables, such as references into schemas that were not read.
// It returns the number of rows dropped.
func (r *RawSchema) PruneForeignKeys() int {
	listed := make(map[string]bool, len(r.Tables))
	for _, t := range r.Tables {
		listed[strings.ToLower(strings.TrimSpace(t.Name))] = true
	}
	kept := r.ForeignKeys[:0]
	dropped := 0
	for _, fk := range r.ForeignKeys {
		if listed[strings.ToLower(strings.TrimSpace(fk.Table))] &&
			listed[strings.ToLower(strings.TrimSpace(fk.ReferencedTable))] {
			kept = append(kept, fk)
			continue
		}
		dropped++
	}
	r.ForeignKeys = kept
	return dropped
}

// Column is a normalized table column.
type Column struct {
	Name       string
	NativeType string
	Type       Type
	Nullable   bool
	Position   int
	PrimaryKey bool
}

// Table is a normalized table or view. Name is the qualified
// schema-dot-table form with the casing of the source listing.
type Table struct {
	Name        string
	Kind        Kind
	Columns     []Column
	PrimaryKeys []string
}

// BaseName returns the table name without its schema qualifier.
func (t *Table) BaseName() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// Column looks a column up by name, case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) canonicalColumn(name string) string {
	if c, ok := t.Column(name); ok {
		return c.Name
	}
	return name
}

// ForeignKey is a normalized single-column constraint between two
// catalog tables.
type ForeignKey struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Catalog is an immutable snapshot of one or more database schemas.
// Tables keep the order of the raw listing, columns their ordinal order.
type Catalog struct {
	tables      []*Table
	index       map[string]*Table
	foreignKeys []ForeignKey
}

// Tables returns all tables in listing order. The slice is shared and
// must not be modified.
func (c *Catalog) Tables() []*Table {
	return c.tables
}

// Table looks a table up by qualified name, case-insensitively.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ForeignKeys returns all constraints in row order.
func (c *Catalog) ForeignKeys() []ForeignKey {
	return c.foreignKeys
}

// MalformedError reports raw metadata that cannot form a valid catalog.
type MalformedError struct {
	Table  string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("malformed catalog: %s", e.Reason)
	}
	return fmt.Sprintf("malformed catalog: table %q: %s", e.Table, e.Reason)
}
