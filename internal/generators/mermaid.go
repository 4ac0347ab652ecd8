package generators

import (
	"fmt"
	"strings"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/relations"
)

// GenerateMermaid renders the catalog as a Mermaid ER diagram wrapped in a
// markdown document. Explicit relationships are drawn solid, inferred ones
// dotted, so the output shows what the transfer is about to send.
func GenerateMermaid(cat *catalog.Catalog, rels []relations.Relation) string {
	var builder strings.Builder

	builder.WriteString("# Schema Preview\n\n")
	builder.WriteString("```mermaid\nerDiagram\n")

	foreign := make(map[string]bool, len(rels))
	for _, rel := range rels {
		foreign[strings.ToLower(rel.SourceTable)+"."+strings.ToLower(rel.SourceColumn)] = true
	}

	for _, table := range cat.Tables() {
		builder.WriteString(fmt.Sprintf("    %s {\n", cleanTableName(table.Name)))

		for _, col := range table.Columns {
			keyStr := ""
			if col.PrimaryKey {
				keyStr = " PK"
			} else if foreign[strings.ToLower(table.Name)+"."+strings.ToLower(col.Name)] {
				keyStr = " FK"
			}
			builder.WriteString(fmt.Sprintf("        %s %s%s\n", formatMermaidType(col), col.Name, keyStr))
		}

		builder.WriteString("    }\n\n")
	}

	explicit, inferred := 0, 0
	for _, rel := range rels {
		connector := "||--o{"
		if rel.Origin == relations.OriginInferred {
			connector = "||..o{"
			inferred++
		} else {
			explicit++
		}
		builder.WriteString(fmt.Sprintf("    %s %s %s : %s\n",
			cleanTableName(rel.TargetTable),
			connector,
			cleanTableName(rel.SourceTable),
			rel.SourceColumn))
	}

	builder.WriteString("```\n\n")
	builder.WriteString(fmt.Sprintf("Total Tables: %d\n", len(cat.Tables())))
	builder.WriteString(fmt.Sprintf("Explicit Relationships: %d\n", explicit))
	builder.WriteString(fmt.Sprintf("Inferred Relationships: %d\n", inferred))

	return builder.String()
}

// Mermaid attribute types cannot contain spaces.
func formatMermaidType(col catalog.Column) string {
	t := strings.ToLower(col.NativeType)
	t = strings.ReplaceAll(t, " ", "_")
	if t == "" {
		return strings.ToLower(string(col.Type))
	}
	return t
}

func cleanTableName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return name
}
