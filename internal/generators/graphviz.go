package generators

import (
	"fmt"
	"strings"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/relations"
)

// GenerateGraphviz renders the catalog as a Graphviz digraph. Record labels
// show the semantic type bucket to keep nodes compact.
func GenerateGraphviz(cat *catalog.Catalog, rels []relations.Relation) string {
	var builder strings.Builder

	builder.WriteString("digraph schema {\n")
	builder.WriteString("  rankdir=TB;\n")
	builder.WriteString("  node [shape=record, style=filled, fillcolor=lightblue];\n")
	builder.WriteString("  edge [color=gray];\n\n")

	for _, table := range cat.Tables() {
		title := table.Name
		suffix := "\\l}\"];\n"
		if table.Kind == catalog.KindView {
			title += " (VIEW)"
			suffix = "\\l}\", fillcolor=lightgreen];\n"
		}
		builder.WriteString(fmt.Sprintf("  %s [label=\"{%s|", cleanNodeName(table.Name), title))

		var fields []string
		for _, col := range table.Columns {
			field := col.Name + ": " + string(col.Type)
			if col.PrimaryKey {
				field = "+" + field
			}
			if !col.Nullable {
				field += " NOT NULL"
			}
			fields = append(fields, field)
		}

		builder.WriteString(strings.Join(fields, "\\l"))
		builder.WriteString(suffix)
	}

	builder.WriteString("\n")

	for _, rel := range rels {
		attrs := fmt.Sprintf("label=%q", rel.SourceColumn)
		if rel.Origin == relations.OriginInferred {
			attrs += ", style=dashed"
		}
		builder.WriteString(fmt.Sprintf("  %s -> %s [%s];\n",
			cleanNodeName(rel.TargetTable),
			cleanNodeName(rel.SourceTable),
			attrs))
	}

	builder.WriteString("}\n")

	return builder.String()
}

func cleanNodeName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
