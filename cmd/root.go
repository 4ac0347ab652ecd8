package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ellietransfer/pkg/config"
)

var (
	cfgFile string
	debug   bool
	cfg     config.Config
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "ellietransfer",
	Short: "Transfer database schemas into Ellie data models",
	Long: `A CLI tool that reads schema metadata from Snowflake, PostgreSQL,
SQL Server or SQLite and creates or updates a data model in Ellie.

Examples:
  ellietransfer setup
  ellietransfer schemas
  ellietransfer transfer --schemas PUBLIC --model-name "Webshop" --folder-id 12
  ellietransfer transfer --model-id 345 --dry-run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ellietransfer.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log API requests and responses")
	rootCmd.PersistentFlags().String("driver", "", "Source driver: snowflake, postgres, sqlserver, sqlite")
	rootCmd.PersistentFlags().String("url", "", "Source connection URL (postgres, sqlserver, sqlite)")
	rootCmd.PersistentFlags().String("account", "", "Snowflake account or account URL")
	rootCmd.PersistentFlags().String("user", "", "Source database user")
	rootCmd.PersistentFlags().String("database", "", "Source database name")
	rootCmd.PersistentFlags().String("warehouse", "", "Snowflake warehouse")
	rootCmd.PersistentFlags().String("role", "", "Snowflake role")

	viper.BindPFlag("source.driver", rootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("source.url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("source.account", rootCmd.PersistentFlags().Lookup("account"))
	viper.BindPFlag("source.user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("source.database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("source.warehouse", rootCmd.PersistentFlags().Lookup("warehouse"))
	viper.BindPFlag("source.role", rootCmd.PersistentFlags().Lookup("role"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ellietransfer")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ELLIE_TRANSFER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
