package relations

import (
	"log/slog"
	"strings"

	"github.com/jinzhu/inflection"

	"ellietransfer/internal/catalog"
)

// Origin records how a relation was discovered.
type Origin string

const (
	// OriginExplicit marks relations backed by a foreign key constraint.
	OriginExplicit Origin = "EXPLICIT"
	// OriginInferred marks relations derived from column naming.
	OriginInferred Origin = "INFERRED"
)

// Cardinality describes the shape of a relation. Single-column foreign
// keys always read as one referenced row to many referencing rows.
type Cardinality string

const CardinalityOneToMany Cardinality = "ONE_TO_MANY"

// Relation links a referencing column to a referenced table. Source is
// the referencing (many) side, Target the referenced (one) side.
type Relation struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Origin       Origin
	Cardinality  Cardinality
}

// Options controls name-based inference.
type Options struct {
	// Suffix joined onto a singular table name forms the foreign key
	// column pattern. Empty means "_id".
	Suffix string
}

const defaultSuffix = "_id"

// Resolve derives the relations of a catalog in two passes. Constraints
// come first, one relation per constraint row. Then, for table pairs
// with no constraint between them, a column named like another table,
// singular or as listed, plus the suffix is read as a foreign key,
// targeting that table's primary key or its same-named column.
// Duplicates keep the constraint-backed relation. The result order is
// deterministic: constraint rows first, then inferred relations in
// table and column order.
func Resolve(cat *catalog.Catalog, opts Options) []Relation {
	suffix := strings.ToLower(opts.Suffix)
	if suffix == "" {
		suffix = defaultSuffix
	}

	var rels []Relation
	seen := make(map[string]bool)
	linked := make(map[string]bool)

	for _, fk := range cat.ForeignKeys() {
		r := Relation{
			SourceTable:  fk.Table,
			SourceColumn: fk.Column,
			TargetTable:  fk.ReferencedTable,
			TargetColumn: fk.ReferencedColumn,
			Origin:       OriginExplicit,
			Cardinality:  CardinalityOneToMany,
		}
		key := relKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		linked[pairKey(r.SourceTable, r.TargetTable)] = true
		rels = append(rels, r)
	}

	for _, src := range cat.Tables() {
		for _, col := range src.Columns {
			target, targetCol, ok := inferTarget(cat, src, col.Name, suffix)
			if !ok {
				continue
			}
			if linked[pairKey(src.Name, target.Name)] {
				slog.Debug("skipping inferred relation, constraint takes precedence",
					"table", src.Name, "column", col.Name, "referenced", target.Name)
				continue
			}
			r := Relation{
				SourceTable:  src.Name,
				SourceColumn: col.Name,
				TargetTable:  target.Name,
				TargetColumn: targetCol,
				Origin:       OriginInferred,
				Cardinality:  CardinalityOneToMany,
			}
			key := relKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			rels = append(rels, r)
			slog.Debug("inferred relation from column name",
				"table", src.Name, "column", col.Name,
				"referenced", target.Name, "referencedColumn", targetCol)
		}
	}

	return rels
}

// inferTarget matches a column name against the foreign key naming
// pattern of every other table. Tables in the same schema as src win
// over equally named tables elsewhere, otherwise catalog order decides.
func inferTarget(cat *catalog.Catalog, src *catalog.Table, column, suffix string) (*catalog.Table, string, bool) {
	name := strings.ToLower(column)
	if !strings.HasSuffix(name, suffix) {
		return nil, "", false
	}

	var match *catalog.Table
	for _, t := range cat.Tables() {
		if strings.EqualFold(t.Name, src.Name) {
			continue
		}
		base := strings.ToLower(t.BaseName())
		if name != strings.ToLower(inflection.Singular(t.BaseName()))+suffix && name != base+suffix {
			continue
		}
		if _, ok := referencedColumn(t, column); !ok {
			continue
		}
		if match == nil {
			match = t
		}
		if schemaOf(t.Name) == schemaOf(src.Name) {
			match = t
			break
		}
	}
	if match == nil {
		return nil, "", false
	}
	col, _ := referencedColumn(match, column)
	return match, col, true
}

// referencedColumn picks the column an inferred relation should land
// on: a single-column primary key when the table has one, otherwise a
// column named like the referencing one.
func referencedColumn(t *catalog.Table, srcColumn string) (string, bool) {
	if len(t.PrimaryKeys) == 1 {
		return t.PrimaryKeys[0], true
	}
	if c, ok := t.Column(srcColumn); ok {
		return c.Name, true
	}
	return "", false
}

func relKey(r Relation) string {
	return strings.ToLower(strings.Join([]string{
		r.SourceTable, r.SourceColumn, r.TargetTable, r.TargetColumn,
	}, "|"))
}

func pairKey(a, b string) string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func schemaOf(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return strings.ToLower(qualified[:i])
	}
	return ""
}
