package database

import (
	"context"
	"database/sql"
	"fmt"

	"ellietransfer/internal/catalog"
)

// SQLServerReader covers SQL Server proper and Fabric warehouses, which
// speak the same TDS dialect.
type SQLServerReader struct {
	db *sql.DB
}

func (s *SQLServerReader) ListSchemas(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sys.schemas
		WHERE name NOT IN ('sys', 'INFORMATION_SCHEMA', 'guest',
			'db_owner', 'db_accessadmin', 'db_securityadmin', 'db_ddladmin',
			'db_backupoperator', 'db_datareader', 'db_datawriter',
			'db_denydatareader', 'db_denydatawriter')
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
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

func (s *SQLServerReader) ReadSchema(ctx context.Context, schemaName string) (catalog.RawSchema, error) {
	var raw catalog.RawSchema

	tables, err := s.readTables(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Tables = tables

	columns, err := s.readColumns(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Columns = columns

	foreignKeys, err := s.readForeignKeys(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.ForeignKeys = foreignKeys

	return raw, nil
}

func (s *SQLServerReader) readTables(ctx context.Context, schemaName string) ([]catalog.TableRow, error) {
	query := `
		SELECT TABLE_NAME, TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		ORDER BY TABLE_NAME`

	rows, err := s.db.QueryContext(ctx, query, schemaName)
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

func (s *SQLServerReader) readColumns(ctx context.Context, schemaName string) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			c.TABLE_NAME,
			c.COLUMN_NAME,
			c.DATA_TYPE,
			CAST(CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS BIT) AS IS_NULLABLE,
			c.ORDINAL_POSITION,
			CAST(CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END AS BIT) AS IS_PRIMARY_KEY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
				AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
				AND tc.TABLE_SCHEMA = @p1
		) pk ON c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

	rows, err := s.db.QueryContext(ctx, query, schemaName)
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

func (s *SQLServerReader) readForeignKeys(ctx context.Context, schemaName string) ([]catalog.ForeignKeyRow, error) {
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
		WHERE kcu.TABLE_SCHEMA = @p1
		ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`

	rows, err := s.db.QueryContext(ctx, query, schemaName)
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
