package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/snowflakedb/gosnowflake"

	"ellietransfer/internal/catalog"
	"ellietransfer/pkg/config"
)

var accountPattern = regexp.MustCompile(`(?i)^(?:https?://)?([^/]+?)\.snowflakecomputing\.com/?$`)

// ExtractAccount returns the Snowflake account identifier. Users tend
// to paste the full https://account.snowflakecomputing.com URL from
// their browser, anything else passes through unchanged.
func ExtractAccount(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := accountPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// snowflakeConfig maps source configuration onto the driver's. In
// privatelink mode the account keeps its privatelink segment so the
// driver resolves the private endpoint instead of the public one.
func snowflakeConfig(cfg config.SourceConfig) (*gosnowflake.Config, error) {
	account := ExtractAccount(cfg.Account)
	if account == "" {
		return nil, fmt.Errorf("snowflake source needs an account")
	}
	if strings.EqualFold(cfg.ConnectionMode, "privatelink") &&
		!strings.Contains(strings.ToLower(account), "privatelink") {
		account += ".privatelink"
	}
	return &gosnowflake.Config{
		Account:   account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	}, nil
}

type SnowflakeReader struct {
	db *sql.DB
}

func (r *SnowflakeReader) ListSchemas(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT SCHEMA_NAME
		FROM INFORMATION_SCHEMA.SCHEMATA
		WHERE SCHEMA_NAME <> 'INFORMATION_SCHEMA'
		ORDER BY SCHEMA_NAME`)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

func (r *SnowflakeReader) ReadSchema(ctx context.Context, schemaName string) (catalog.RawSchema, error) {
	var raw catalog.RawSchema

	tables, err := r.readTables(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Tables = tables

	columns, err := r.readColumns(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Columns = columns

	foreignKeys, err := r.readForeignKeys(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.ForeignKeys = foreignKeys

	return raw, nil
}

func (r *SnowflakeReader) readTables(ctx context.Context, schemaName string) ([]catalog.TableRow, error) {
	query := `
		SELECT TABLE_NAME, TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME`

	rows, err := r.db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []catalog.TableRow
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		tables = append(tables, catalog.TableRow{
			Name: schemaName + "." + name,
			Kind: kind,
		})
	}
	return tables, rows.Err()
}

func (r *SnowflakeReader) readColumns(ctx context.Context, schemaName string) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			c.TABLE_NAME,
			c.COLUMN_NAME,
			c.DATA_TYPE,
			CASE WHEN c.IS_NULLABLE = 'YES' THEN true ELSE false END AS IS_NULLABLE,
			c.ORDINAL_POSITION,
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN true ELSE false END AS IS_PRIMARY_KEY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
				AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
				AND tc.TABLE_SCHEMA = ?
		) pk ON c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = ?
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

	rows, err := r.db.QueryContext(ctx, query, schemaName, schemaName)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	var columns []catalog.ColumnRow
	for rows.Next() {
		var row catalog.ColumnRow
		var table string
		if err := rows.Scan(&table, &row.Name, &row.DataType, &row.Nullable, &row.Position, &row.PrimaryKey); err != nil {
			return nil, err
		}
		row.Table = schemaName + "." + table
		columns = append(columns, row)
	}
	return columns, rows.Err()
}

func (r *SnowflakeReader) readForeignKeys(ctx context.Context, schemaName string) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT
			kcu.TABLE_SCHEMA,
			kcu.TABLE_NAME,
			kcu.COLUMN_NAME,
			kcu2.TABLE_SCHEMA,
			kcu2.TABLE_NAME,
			kcu2.COLUMN_NAME
		FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND rc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu2
			ON rc.UNIQUE_CONSTRAINT_NAME = kcu2.CONSTRAINT_NAME
			AND rc.UNIQUE_CONSTRAINT_SCHEMA = kcu2.CONSTRAINT_SCHEMA
			AND kcu.ORDINAL_POSITION = kcu2.ORDINAL_POSITION
		WHERE kcu.TABLE_SCHEMA = ?
		ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`

	rows, err := r.db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("listing foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []catalog.ForeignKeyRow
	for rows.Next() {
		var srcSchema, srcTable, srcColumn, refSchema, refTable, refColumn string
		if err := rows.Scan(&srcSchema, &srcTable, &srcColumn, &refSchema, &refTable, &refColumn); err != nil {
			return nil, err
		}
		foreignKeys = append(foreignKeys, catalog.ForeignKeyRow{
			Table:            srcSchema + "." + srcTable,
			Column:           srcColumn,
			ReferencedTable:  refSchema + "." + refTable,
			ReferencedColumn: refColumn,
		})
	}
	return foreignKeys, rows.Err()
}
