package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"
	"github.com/snowflakedb/gosnowflake"

	"ellietransfer/internal/catalog"
	"ellietransfer/pkg/config"
)

// Reader extracts raw schema metadata from one source database.
type Reader interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ReadSchema(ctx context.Context, schemaName string) (catalog.RawSchema, error)
}

type Connector struct {
	db     *sql.DB
	driver string
}

func NewConnector(ctx context.Context, cfg config.SourceConfig) (*Connector, error) {
	driver, dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connector{
		db:     db,
		driver: driver,
	}, nil
}

func (c *Connector) Close() error {
	return c.db.Close()
}

func (c *Connector) Reader() (Reader, error) {
	switch c.driver {
	case "snowflake":
		return &SnowflakeReader{db: c.db}, nil
	case "postgres":
		return &PostgresReader{db: c.db}, nil
	case "sqlserver", azuread.DriverName:
		return &SQLServerReader{db: c.db}, nil
	case "sqlite3":
		return &SQLiteReader{db: c.db}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.driver)
	}
}

// resolveDSN turns source configuration into a registered driver name
// and its DSN. The driver may be named outright or inferred from the
// URL scheme.
func resolveDSN(cfg config.SourceConfig) (driver, dsn string, err error) {
	switch driverName(cfg) {
	case "snowflake":
		sfCfg, err := snowflakeConfig(cfg)
		if err != nil {
			return "", "", err
		}
		dsn, err := gosnowflake.DSN(sfCfg)
		if err != nil {
			return "", "", fmt.Errorf("building snowflake dsn: %w", err)
		}
		return "snowflake", dsn, nil
	case "postgres", "postgresql":
		return "postgres", cfg.URL, nil
	case "sqlserver", "mssql":
		dsn, err := sqlserverDSN(cfg)
		if err != nil {
			return "", "", err
		}
		if cfg.FedAuth != "" {
			return azuread.DriverName, dsn, nil
		}
		return "sqlserver", dsn, nil
	case "sqlite", "sqlite3":
		return "sqlite3", strings.TrimPrefix(cfg.URL, "sqlite://"), nil
	case "":
		return "", "", fmt.Errorf("no source driver configured")
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func driverName(cfg config.SourceConfig) string {
	if cfg.Driver != "" {
		return strings.ToLower(cfg.Driver)
	}
	if u, err := url.Parse(cfg.URL); err == nil {
		return strings.ToLower(u.Scheme)
	}
	return ""
}

// sqlserverDSN passes the configured URL through, folding the federated
// auth mode in as a query parameter. Fabric warehouses only speak
// Entra ID, plain SQL Server auth works without it.
func sqlserverDSN(cfg config.SourceConfig) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("sqlserver source needs a url")
	}
	if cfg.FedAuth == "" {
		return cfg.URL, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parsing sqlserver url: %w", err)
	}
	query := u.Query()
	query.Set("fedauth", cfg.FedAuth)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// ReadSchemas reads every named schema through the reader and merges
// the rows. Constraints reaching outside the read set are pruned, a
// reference into a schema nobody asked for is not an error.
func ReadSchemas(ctx context.Context, r Reader, schemas []string) (catalog.RawSchema, error) {
	var merged catalog.RawSchema
	for _, name := range schemas {
		raw, err := r.ReadSchema(ctx, name)
		if err != nil {
			return catalog.RawSchema{}, fmt.Errorf("reading schema %s: %w", name, err)
		}
		merged.Merge(raw)
	}
	if dropped := merged.PruneForeignKeys(); dropped > 0 {
		slog.Debug("pruned out-of-scope constraints", "count", dropped)
	}
	return merged, nil
}
