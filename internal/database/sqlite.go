package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ellietransfer/internal/catalog"
)

// SQLiteReader reads the main database of a SQLite file. SQLite has no
// server-side schemas, so the schema argument is ignored and every row
// is qualified with "main".
type SQLiteReader struct {
	db *sql.DB
}

const sqliteSchema = "main"

func (s *SQLiteReader) ListSchemas(ctx context.Context) ([]string, error) {
	return []string{sqliteSchema}, nil
}

func (s *SQLiteReader) ReadSchema(ctx context.Context, _ string) (catalog.RawSchema, error) {
	var raw catalog.RawSchema

	names, err := s.readTables(ctx, &raw)
	if err != nil {
		return raw, err
	}

	primaryKeys := make(map[string][]string, len(names))
	for _, name := range names {
		if err := s.readColumns(ctx, name, &raw, primaryKeys); err != nil {
			return raw, err
		}
	}
	for _, name := range names {
		if err := s.readForeignKeys(ctx, name, &raw, primaryKeys); err != nil {
			return raw, err
		}
	}

	return raw, nil
}

func (s *SQLiteReader) readTables(ctx context.Context, raw *catalog.RawSchema) ([]string, error) {
	query := `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		names = append(names, name)
		raw.Tables = append(raw.Tables, catalog.TableRow{
			Name: sqliteSchema + "." + name,
			Kind: kind,
		})
	}
	return names, rows.Err()
}

func (s *SQLiteReader) readColumns(ctx context.Context, table string, raw *catalog.RawSchema, primaryKeys map[string][]string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return err
		}

		// pk carries the 1-based position inside a composite key
		if pk > 0 {
			primaryKeys[strings.ToLower(table)] = append(primaryKeys[strings.ToLower(table)], name)
		}
		raw.Columns = append(raw.Columns, catalog.ColumnRow{
			Table:      sqliteSchema + "." + table,
			Name:       name,
			DataType:   dataType,
			Nullable:   notNull == 0,
			Position:   cid + 1,
			PrimaryKey: pk > 0,
		})
	}
	return rows.Err()
}

func (s *SQLiteReader) readForeignKeys(ctx context.Context, table string, raw *catalog.RawSchema, primaryKeys map[string][]string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return fmt.Errorf("reading foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, seq int
		var referencedTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &referencedTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}

		// A NULL "to" column means the key references the target's
		// implicit primary key.
		referencedColumn := to.String
		if !to.Valid {
			pks := primaryKeys[strings.ToLower(referencedTable)]
			if len(pks) != 1 {
				continue
			}
			referencedColumn = pks[0]
		}

		raw.ForeignKeys = append(raw.ForeignKeys, catalog.ForeignKeyRow{
			Table:            sqliteSchema + "." + table,
			Column:           from,
			ReferencedTable:  sqliteSchema + "." + referencedTable,
			ReferencedColumn: referencedColumn,
		})
	}
	return rows.Err()
}
