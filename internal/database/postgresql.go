package database

import (
	"context"
	"database/sql"
	"fmt"

	"ellietransfer/internal/catalog"
)

type PostgresReader struct {
	db *sql.DB
}

func (p *PostgresReader) ListSchemas(ctx context.Context) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
			AND schema_name NOT LIKE 'pg_toast%'
			AND schema_name NOT LIKE 'pg_temp%'
		ORDER BY schema_name`

	rows, err := p.db.QueryContext(ctx, query)
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

func (p *PostgresReader) ReadSchema(ctx context.Context, schemaName string) (catalog.RawSchema, error) {
	var raw catalog.RawSchema

	tables, err := p.readTables(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Tables = tables

	columns, err := p.readColumns(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.Columns = columns

	foreignKeys, err := p.readForeignKeys(ctx, schemaName)
	if err != nil {
		return raw, err
	}
	raw.ForeignKeys = foreignKeys

	return raw, nil
}

func (p *PostgresReader) readTables(ctx context.Context, schemaName string) ([]catalog.TableRow, error) {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	rows, err := p.db.QueryContext(ctx, query, schemaName)
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

func (p *PostgresReader) readColumns(ctx context.Context, schemaName string) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' AS is_nullable,
			c.ordinal_position,
			pk.column_name IS NOT NULL AS is_primary_key
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.table_name, kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = $1
		) pk ON c.table_name = pk.table_name AND c.column_name = pk.column_name
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := p.db.QueryContext(ctx, query, schemaName)
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

func (p *PostgresReader) readForeignKeys(ctx context.Context, schemaName string) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT
			kcu.table_schema,
			kcu.table_name,
			kcu.column_name,
			kcu2.table_schema,
			kcu2.table_name,
			kcu2.column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON rc.constraint_name = kcu.constraint_name
			AND rc.constraint_schema = kcu.constraint_schema
		JOIN information_schema.key_column_usage kcu2
			ON rc.unique_constraint_name = kcu2.constraint_name
			AND rc.unique_constraint_schema = kcu2.constraint_schema
			AND kcu.position_in_unique_constraint = kcu2.ordinal_position
		WHERE kcu.table_schema = $1
		ORDER BY kcu.table_name, kcu.ordinal_position`

	rows, err := p.db.QueryContext(ctx, query, schemaName)
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
