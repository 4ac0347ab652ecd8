package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/database"
	"ellietransfer/internal/ellie"
	"ellietransfer/internal/plan"
	"ellietransfer/internal/relations"
)

var dryRun bool

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Read the source schema and send it to Ellie as a data model",
	Long: `Reads tables, columns and foreign keys from the configured source
database, resolves relationships, and creates a new Ellie model or
updates an existing one. With --model-id the remote model is fetched
first and only missing pieces are sent.`,
	RunE: runTransfer,
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringSlice("schemas", []string{"PUBLIC"}, "Schemas to read, comma separated")
	transferCmd.Flags().String("model-name", "", "Name for the Ellie model (default is the first schema name)")
	transferCmd.Flags().String("model-id", "", "Existing Ellie model to update instead of creating a new one")
	transferCmd.Flags().Int("folder-id", 0, "Ellie folder to create the model in")
	transferCmd.Flags().String("level", ellie.LevelPhysical, "Model level: conceptual, logical or physical")
	transferCmd.Flags().Bool("include-views", true, "Include views as entities")
	transferCmd.Flags().String("fk-suffix", "_id", "Column suffix used to infer relationships")
	transferCmd.Flags().Int("max-entities", 0, "Refuse to transfer more entities than this (0 disables the check)")
	transferCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without sending anything")

	viper.BindPFlag("transfer.schemas", transferCmd.Flags().Lookup("schemas"))
	viper.BindPFlag("transfer.model_name", transferCmd.Flags().Lookup("model-name"))
	viper.BindPFlag("transfer.model_id", transferCmd.Flags().Lookup("model-id"))
	viper.BindPFlag("transfer.folder_id", transferCmd.Flags().Lookup("folder-id"))
	viper.BindPFlag("transfer.level", transferCmd.Flags().Lookup("level"))
	viper.BindPFlag("transfer.include_views", transferCmd.Flags().Lookup("include-views"))
	viper.BindPFlag("transfer.fk_suffix", transferCmd.Flags().Lookup("fk-suffix"))
	viper.BindPFlag("transfer.max_entities", transferCmd.Flags().Lookup("max-entities"))
}

func runTransfer(cmd *cobra.Command, args []string) error {
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	level := cfg.Transfer.Level
	if level == "" {
		level = ellie.LevelPhysical
	}
	if level != ellie.LevelConceptual && level != ellie.LevelLogical && level != ellie.LevelPhysical {
		return fmt.Errorf("invalid level '%s'. Valid levels: conceptual, logical, physical", level)
	}

	schemas := cfg.Transfer.Schemas
	if len(schemas) == 0 {
		schemas = []string{"PUBLIC"}
	}

	modelName := cfg.Transfer.ModelName
	if modelName == "" {
		modelName = schemas[0]
	}

	if cfg.Transfer.ModelID == "" && cfg.Transfer.FolderID == 0 {
		return fmt.Errorf("a folder id is required to create a model, set --folder-id or run 'ellietransfer setup'")
	}
	if cfg.Ellie.Organization == "" || cfg.Ellie.Token == "" {
		return fmt.Errorf("ellie organization and token are not configured, run 'ellietransfer setup'")
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
	if len(rels) == 0 && len(cat.Tables()) > 0 {
		fmt.Fprintln(os.Stderr, warnStyle.Render("No relationships found, the model will contain unconnected entities."))
	}

	model, err := ellie.BuildModel(cat, rels, ellie.BuildOptions{
		Name:     modelName,
		Level:    level,
		FolderID: cfg.Transfer.FolderID,
	})
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}

	client := ellie.NewClient(cfg.Ellie)

	var remote *ellie.Model
	if cfg.Transfer.ModelID != "" {
		remote, err = client.GetModel(ctx, cfg.Transfer.ModelID)
		if err != nil {
			return fmt.Errorf("failed to fetch model %s: %w", cfg.Transfer.ModelID, err)
		}
	}

	p, err := plan.Build(model, remote, plan.Options{
		ModelID:     cfg.Transfer.ModelID,
		MaxEntities: cfg.Transfer.MaxEntities,
	})
	if err != nil {
		return fmt.Errorf("failed to plan transfer: %w", err)
	}

	printPlan(p, model)

	if p.Empty() {
		fmt.Println("Model is already up to date, nothing to send.")
		return nil
	}
	if dryRun {
		fmt.Println("Dry run, nothing sent.")
		return nil
	}

	res, err := plan.Execute(ctx, p, client)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	if res.Created {
		fmt.Printf("Model created: %s\n", successStyle.Render(client.ModelURL(level, res.ModelID)))
	} else {
		fmt.Printf("Model updated: %s\n", successStyle.Render(client.ModelURL(level, res.ModelID)))
	}
	return nil
}

func printPlan(p *plan.Plan, local *ellie.Model) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Model '%s': %d entities, %d relationships", local.Name, len(local.Entities), len(local.Relationships))))
	for _, op := range p.Operations {
		switch op.Kind {
		case plan.KindCreateModel:
			fmt.Printf("  + create model with %d entities and %d relationships\n",
				len(op.Payload.Entities), len(op.Payload.Relationships))
		case plan.KindReplaceEntities:
			fmt.Printf("  ~ replace %d changed or new entities\n", len(op.Payload.Entities))
		case plan.KindAddRelationships:
			fmt.Printf("  + add %d missing relationships\n", len(op.Payload.Relationships))
		}
	}
}
