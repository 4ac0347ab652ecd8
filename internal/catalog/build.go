package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Options controls how raw metadata rows are folded into a Catalog.
type Options struct {
	IncludeViews bool
}

// Build normalizes raw metadata rows into a Catalog. Table and column
// names are matched case-insensitively and stored with the casing of
// their first appearance. Duplicate table listings and duplicate columns
// are dropped, first occurrence wins. Views are excluded unless
// opts.IncludeViews is set, and constraints touching an excluded view go
// with it. Build returns a MalformedError when a column or constraint
// references a table missing from the listing, or when a kept table has
// no columns.
func Build(raw RawSchema, opts Options) (*Catalog, error) {
	known := make(map[string]*Table, len(raw.Tables))
	var order []string

	for _, row := range raw.Tables {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return nil, &MalformedError{Reason: "table listing with empty name"}
		}
		key := strings.ToLower(name)
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = &Table{Name: name, Kind: kindOf(row.Kind)}
		order = append(order, key)
	}

	for _, row := range raw.Columns {
		t, ok := known[strings.ToLower(strings.TrimSpace(row.Table))]
		if !ok {
			return nil, &MalformedError{
				Table:  row.Table,
				Reason: fmt.Sprintf("column %q references a table missing from the listing", row.Name),
			}
		}
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return nil, &MalformedError{Table: t.Name, Reason: "column with empty name"}
		}
		if _, ok := t.Column(name); ok {
			continue
		}
		t.Columns = append(t.Columns, Column{
			Name:       name,
			NativeType: row.DataType,
			Type:       MapType(row.DataType),
			Nullable:   row.Nullable,
			Position:   row.Position,
			PrimaryKey: row.PrimaryKey,
		})
	}

	cat := &Catalog{index: make(map[string]*Table, len(order))}
	excluded := make(map[string]bool)

	for _, key := range order {
		t := known[key]
		if t.Kind == KindView && !opts.IncludeViews {
			excluded[key] = true
			continue
		}
		if len(t.Columns) == 0 {
			return nil, &MalformedError{Table: t.Name, Reason: "no columns"}
		}
		sort.SliceStable(t.Columns, func(i, j int) bool {
			return t.Columns[i].Position < t.Columns[j].Position
		})
		for _, c := range t.Columns {
			if c.PrimaryKey {
				t.PrimaryKeys = append(t.PrimaryKeys, c.Name)
			}
		}
		cat.tables = append(cat.tables, t)
		cat.index[key] = t
	}

	for _, row := range raw.ForeignKeys {
		srcKey := strings.ToLower(strings.TrimSpace(row.Table))
		refKey := strings.ToLower(strings.TrimSpace(row.ReferencedTable))
		if excluded[srcKey] || excluded[refKey] {
			slog.Debug("dropping constraint on excluded view",
				"table", row.Table, "referenced", row.ReferencedTable)
			continue
		}
		src, ok := cat.index[srcKey]
		if !ok {
			return nil, &MalformedError{
				Table:  row.Table,
				Reason: "constraint references a table missing from the listing",
			}
		}
		ref, ok := cat.index[refKey]
		if !ok {
			return nil, &MalformedError{
				Table:  row.ReferencedTable,
				Reason: "constraint references a table missing from the listing",
			}
		}
		cat.foreignKeys = append(cat.foreignKeys, ForeignKey{
			Table:            src.Name,
			Column:           src.canonicalColumn(strings.TrimSpace(row.Column)),
			ReferencedTable:  ref.Name,
			ReferencedColumn: ref.canonicalColumn(strings.TrimSpace(row.ReferencedColumn)),
		})
	}

	return cat, nil
}

func kindOf(raw string) Kind {
	if strings.Contains(strings.ToUpper(raw), "VIEW") {
		return KindView
	}
	return KindTable
}
