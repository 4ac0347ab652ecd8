package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ellietransfer/internal/database"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the schemas available in the source database",
	RunE:  runSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, args []string) error {
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
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

	names, err := reader.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
