package generators

import (
	"fmt"
	"strings"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/relations"
)

// GeneratePlantUML renders the catalog as a PlantUML entity diagram.
func GeneratePlantUML(cat *catalog.Catalog, rels []relations.Relation) string {
	var builder strings.Builder

	builder.WriteString("@startuml\n")
	builder.WriteString("!theme plain\n")
	builder.WriteString("skinparam linetype ortho\n\n")

	for _, table := range cat.Tables() {
		stereotype := ""
		if table.Kind == catalog.KindView {
			stereotype = " <<view>>"
		}
		builder.WriteString(fmt.Sprintf("entity \"%s\" as %s%s {\n", table.Name, cleanEntityName(table.Name), stereotype))

		for _, col := range table.Columns {
			if col.PrimaryKey {
				builder.WriteString(fmt.Sprintf("  * %s : %s <<PK>>\n", col.Name, formatPlantUMLType(col)))
			}
		}

		builder.WriteString("  --\n")

		for _, col := range table.Columns {
			if !col.PrimaryKey {
				nullStr := ""
				if !col.Nullable {
					nullStr = " <<NOT NULL>>"
				}
				builder.WriteString(fmt.Sprintf("  %s : %s%s\n", col.Name, formatPlantUMLType(col), nullStr))
			}
		}

		builder.WriteString("}\n\n")
	}

	for _, rel := range rels {
		connector := "||--o{"
		if rel.Origin == relations.OriginInferred {
			connector = "||..o{"
		}
		builder.WriteString(fmt.Sprintf("%s %s %s : %s\n",
			cleanEntityName(rel.TargetTable),
			connector,
			cleanEntityName(rel.SourceTable),
			rel.SourceColumn))
	}

	builder.WriteString("\n@enduml\n")

	return builder.String()
}

func formatPlantUMLType(col catalog.Column) string {
	if col.NativeType == "" {
		return string(col.Type)
	}
	return strings.ToUpper(col.NativeType)
}

func cleanEntityName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
