package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/database"
	"ellietransfer/internal/generators"
	"ellietransfer/internal/relations"
)

var (
	previewFormat string
	previewFile   string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the source schema as a diagram without contacting Ellie",
	Long: `Reads the source schema, resolves relationships the same way
transfer does, and writes an ER diagram. Inferred relationships are drawn
dotted so they can be reviewed before anything is sent to Ellie.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "mermaid", "Output format: mermaid, plantuml, graphviz")
	previewCmd.Flags().StringVarP(&previewFile, "output", "o", "", "Output file path (default: schema.<format>)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validFormats := []string{"mermaid", "plantuml", "graphviz"}
	if !contains(validFormats, previewFormat) {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s", previewFormat, strings.Join(validFormats, ", "))
	}

	if previewFile == "" {
		ext := map[string]string{
			"mermaid":  ".md",
			"plantuml": ".puml",
			"graphviz": ".dot",
		}
		previewFile = "schema" + ext[previewFormat]
	}

	schemas := cfg.Transfer.Schemas
	if len(schemas) == 0 {
		schemas = []string{"PUBLIC"}
	}

	ctx := cmd.Context()

	connector, err := database.NewConnector(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to connect to source: %w", err)
	}
	defer connector.Close()

	reader, err := connector.Reader()
	if err != nil {
		return err
	}

	raw, err := database.ReadSchemas(ctx, reader, schemas)
	if err != nil {
		return fmt.Errorf("failed to read schema metadata: %w", err)
	}

	cat, err := catalog.Build(raw, catalog.Options{IncludeViews: cfg.Transfer.IncludeViews})
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	rels := relations.Resolve(cat, relations.Options{Suffix: cfg.Transfer.FKSuffix})

	var content string
	switch previewFormat {
	case "mermaid":
		content = generators.GenerateMermaid(cat, rels)
	case "plantuml":
		content = generators.GeneratePlantUML(cat, rels)
	case "graphviz":
		content = generators.GenerateGraphviz(cat, rels)
	}

	if dir := filepath.Dir(previewFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(previewFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Schema preview generated: %s\n", previewFile)
	fmt.Printf("Tables: %d\n", len(cat.Tables()))
	fmt.Printf("Relationships: %d\n", len(rels))

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
