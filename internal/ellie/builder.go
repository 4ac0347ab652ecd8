package ellie

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/relations"
)

// entityNamespace seeds the deterministic entity IDs. It must never
// change, or entities of previously transferred models stop lining up.
var entityNamespace = uuid.MustParse("9aa73d49-0f24-4a73-8b4c-4de2f0e4a1c6")

// EntityID returns the stable entity ID for a qualified table name.
func EntityID(qualifiedTable string) string {
	return uuid.NewSHA1(entityNamespace, []byte(strings.ToLower(qualifiedTable))).String()
}

// EmptyModelError reports a build over a catalog without tables.
type EmptyModelError struct {
	Model string
}

func (e *EmptyModelError) Error() string {
	if e.Model == "" {
		return "model has no entities, the source schema contained no tables"
	}
	return fmt.Sprintf("model %q has no entities, the source schema contained no tables", e.Model)
}

// BuildOptions name the target model. Level defaults to physical.
type BuildOptions struct {
	Name     string
	Level    string
	FolderID int
}

// BuildModel folds a catalog and its resolved relations into an
// importable model document. One entity per table, attributes in column
// order, native types preserved. Entity IDs derive from the qualified
// table names, so repeated runs over the same schema produce identical
// documents.
func BuildModel(cat *catalog.Catalog, rels []relations.Relation, opts BuildOptions) (*Model, error) {
	tables := cat.Tables()
	if len(tables) == 0 {
		return nil, &EmptyModelError{Model: opts.Name}
	}

	level := opts.Level
	if level == "" {
		level = LevelPhysical
	}

	foreign := make(map[string]bool, len(rels))
	for _, r := range rels {
		foreign[columnKey(r.SourceTable, r.SourceColumn)] = true
	}

	m := &Model{
		Name:          opts.Name,
		Level:         level,
		FolderID:      opts.FolderID,
		Entities:      make([]Entity, 0, len(tables)),
		Relationships: []Relationship{},
	}

	ids := make(map[string]string, len(tables))
	for _, t := range tables {
		id := EntityID(t.Name)
		ids[strings.ToLower(t.Name)] = id
		e := Entity{ID: id, Name: t.BaseName(), Attributes: make([]Attribute, 0, len(t.Columns))}
		for _, c := range t.Columns {
			e.Attributes = append(e.Attributes, Attribute{
				Name: c.Name,
				Metadata: AttributeMetadata{
					PK:       c.PrimaryKey,
					FK:       foreign[columnKey(t.Name, c.Name)],
					DataType: c.NativeType,
				},
			})
		}
		m.Entities = append(m.Entities, e)
	}

	for _, r := range rels {
		oneID, ok := ids[strings.ToLower(r.TargetTable)]
		manyID, ok2 := ids[strings.ToLower(r.SourceTable)]
		if !ok || !ok2 {
			slog.Warn("skipping relation outside the catalog",
				"table", r.SourceTable, "referenced", r.TargetTable)
			continue
		}
		referenced, _ := cat.Table(r.TargetTable)
		referencing, _ := cat.Table(r.SourceTable)
		m.Relationships = append(m.Relationships, Relationship{
			SourceEntity: Endpoint{
				ID:             oneID,
				Name:           referenced.BaseName(),
				StartType:      "one",
				AttributeNames: []string{r.TargetColumn},
			},
			TargetEntity: Endpoint{
				ID:             manyID,
				Name:           referencing.BaseName(),
				EndType:        "many",
				AttributeNames: []string{r.SourceColumn},
			},
			Description: []string{},
		})
	}

	return m, nil
}

func columnKey(table, column string) string {
	return strings.ToLower(table) + "|" + strings.ToLower(column)
}
