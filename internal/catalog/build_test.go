package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeRaw() RawSchema {
	return RawSchema{
		Tables: []TableRow{
			{Name: "PUBLIC.CUSTOMER", Kind: "BASE TABLE"},
			{Name: "PUBLIC.ORDERS", Kind: "BASE TABLE"},
			{Name: "PUBLIC.V_ORDER_TOTALS", Kind: "VIEW"},
		},
		Columns: []ColumnRow{
			{Table: "PUBLIC.CUSTOMER", Name: "ID", DataType: "NUMBER(38,0)", Position: 1, PrimaryKey: true},
			{Table: "PUBLIC.CUSTOMER", Name: "NAME", DataType: "VARCHAR(120)", Nullable: true, Position: 2},
			{Table: "PUBLIC.ORDERS", Name: "ID", DataType: "NUMBER(38,0)", Position: 1, PrimaryKey: true},
			{Table: "PUBLIC.ORDERS", Name: "CUSTOMER_ID", DataType: "NUMBER(38,0)", Position: 2},
			{Table: "PUBLIC.ORDERS", Name: "PLACED_AT", DataType: "TIMESTAMP_NTZ", Position: 3},
			{Table: "PUBLIC.V_ORDER_TOTALS", Name: "CUSTOMER_ID", DataType: "NUMBER(38,0)", Position: 1},
			{Table: "PUBLIC.V_ORDER_TOTALS", Name: "TOTAL", DataType: "NUMBER(38,2)", Position: 2},
		},
		ForeignKeys: []ForeignKeyRow{
			{Table: "PUBLIC.ORDERS", Column: "CUSTOMER_ID", ReferencedTable: "PUBLIC.CUSTOMER", ReferencedColumn: "ID"},
		},
	}
}

func TestBuildNormalizes(t *testing.T) {
	cat, err := Build(storeRaw(), Options{IncludeViews: true})
	require.NoError(t, err)

	tables := cat.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, "PUBLIC.CUSTOMER", tables[0].Name)
	assert.Equal(t, "PUBLIC.ORDERS", tables[1].Name)
	assert.Equal(t, KindTable, tables[1].Kind)
	assert.Equal(t, KindView, tables[2].Kind)

	orders, ok := cat.Table("PUBLIC.ORDERS")
	require.True(t, ok)
	require.Len(t, orders.Columns, 3)
	assert.Equal(t, "ID", orders.Columns[0].Name)
	assert.Equal(t, "CUSTOMER_ID", orders.Columns[1].Name)
	assert.Equal(t, "PLACED_AT", orders.Columns[2].Name)
	assert.Equal(t, []string{"ID"}, orders.PrimaryKeys)
	assert.Equal(t, "NUMBER(38,0)", orders.Columns[0].NativeType)
	assert.Equal(t, TypeDecimal, orders.Columns[0].Type)
	assert.Equal(t, TypeTimestamp, orders.Columns[2].Type)

	require.Len(t, cat.ForeignKeys(), 1)
	fk := cat.ForeignKeys()[0]
	assert.Equal(t, "PUBLIC.ORDERS", fk.Table)
	assert.Equal(t, "PUBLIC.CUSTOMER", fk.ReferencedTable)
}

func TestBuildOrdersColumnsByPosition(t *testing.T) {
	raw := RawSchema{
		Tables: []TableRow{{Name: "S.T", Kind: "BASE TABLE"}},
		Columns: []ColumnRow{
			{Table: "S.T", Name: "C", DataType: "TEXT", Position: 3},
			{Table: "S.T", Name: "A", DataType: "TEXT", Position: 1},
			{Table: "S.T", Name: "B", DataType: "TEXT", Position: 2},
		},
	}
	cat, err := Build(raw, Options{})
	require.NoError(t, err)

	tbl, ok := cat.Table("S.T")
	require.True(t, ok)
	names := make([]string, 0, len(tbl.Columns))
	for _, c := range tbl.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestBuildMatchesCaseInsensitively(t *testing.T) {
	raw := RawSchema{
		Tables:  []TableRow{{Name: "Public.Customer", Kind: "BASE TABLE"}},
		Columns: []ColumnRow{{Table: "PUBLIC.CUSTOMER", Name: "Id", DataType: "INT", Position: 1, PrimaryKey: true}},
		ForeignKeys: []ForeignKeyRow{
			{Table: "public.customer", Column: "id", ReferencedTable: "PUBLIC.customer", ReferencedColumn: "ID"},
		},
	}
	cat, err := Build(raw, Options{})
	require.NoError(t, err)

	tbl, ok := cat.Table("public.CUSTOMER")
	require.True(t, ok)
	assert.Equal(t, "Public.Customer", tbl.Name)

	require.Len(t, cat.ForeignKeys(), 1)
	fk := cat.ForeignKeys()[0]
	assert.Equal(t, "Public.Customer", fk.Table)
	assert.Equal(t, "Id", fk.Column)
	assert.Equal(t, "Id", fk.ReferencedColumn)
}

func TestBuildDropsDuplicates(t *testing.T) {
	raw := RawSchema{
		Tables: []TableRow{
			{Name: "S.T", Kind: "BASE TABLE"},
			{Name: "s.t", Kind: "VIEW"},
		},
		Columns: []ColumnRow{
			{Table: "S.T", Name: "A", DataType: "INT", Position: 1},
			{Table: "S.T", Name: "a", DataType: "TEXT", Position: 2},
		},
	}
	cat, err := Build(raw, Options{})
	require.NoError(t, err)

	require.Len(t, cat.Tables(), 1)
	tbl := cat.Tables()[0]
	assert.Equal(t, KindTable, tbl.Kind)
	require.Len(t, tbl.Columns, 1)
	assert.Equal(t, "INT", tbl.Columns[0].NativeType)
}

func TestBuildExcludesViews(t *testing.T) {
	cat, err := Build(storeRaw(), Options{IncludeViews: false})
	require.NoError(t, err)

	require.Len(t, cat.Tables(), 2)
	_, ok := cat.Table("PUBLIC.V_ORDER_TOTALS")
	assert.False(t, ok)
}

func TestBuildDropsConstraintOnExcludedView(t *testing.T) {
	raw := storeRaw()
	raw.ForeignKeys = append(raw.ForeignKeys, ForeignKeyRow{
		Table: "PUBLIC.V_ORDER_TOTALS", Column: "CUSTOMER_ID",
		ReferencedTable: "PUBLIC.CUSTOMER", ReferencedColumn: "ID",
	})

	cat, err := Build(raw, Options{IncludeViews: false})
	require.NoError(t, err)
	require.Len(t, cat.ForeignKeys(), 1)
	assert.Equal(t, "PUBLIC.ORDERS", cat.ForeignKeys()[0].Table)
}

func TestBuildFailsOnUnknownTables(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSchema
	}{
		{
			name: "column references unlisted table",
			raw: RawSchema{
				Tables:  []TableRow{{Name: "S.A", Kind: "BASE TABLE"}},
				Columns: []ColumnRow{{Table: "S.B", Name: "ID", DataType: "INT", Position: 1}},
			},
		},
		{
			name: "constraint references unlisted table",
			raw: RawSchema{
				Tables:  []TableRow{{Name: "S.A", Kind: "BASE TABLE"}},
				Columns: []ColumnRow{{Table: "S.A", Name: "ID", DataType: "INT", Position: 1}},
				ForeignKeys: []ForeignKeyRow{
					{Table: "S.A", Column: "ID", ReferencedTable: "S.GONE", ReferencedColumn: "ID"},
				},
			},
		},
		{
			name: "table without columns",
			raw: RawSchema{
				Tables:  []TableRow{{Name: "S.A", Kind: "BASE TABLE"}, {Name: "S.EMPTY", Kind: "BASE TABLE"}},
				Columns: []ColumnRow{{Table: "S.A", Name: "ID", DataType: "INT", Position: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.raw, Options{})
			var malformed *MalformedError
			require.ErrorAs(t, err, &malformed)
		})
	}
}

func TestBuildAllowsEmptyColumnsOnExcludedView(t *testing.T) {
	raw := RawSchema{
		Tables: []TableRow{
			{Name: "S.A", Kind: "BASE TABLE"},
			{Name: "S.V", Kind: "VIEW"},
		},
		Columns: []ColumnRow{{Table: "S.A", Name: "ID", DataType: "INT", Position: 1}},
	}
	cat, err := Build(raw, Options{IncludeViews: false})
	require.NoError(t, err)
	require.Len(t, cat.Tables(), 1)
}

func TestBuildEmptyInput(t *testing.T) {
	cat, err := Build(RawSchema{}, Options{IncludeViews: true})
	require.NoError(t, err)
	assert.Empty(t, cat.Tables())
	assert.Empty(t, cat.ForeignKeys())
}

func TestPruneForeignKeys(t *testing.T) {
	raw := RawSchema{
		Tables: []TableRow{{Name: "A.ORDERS", Kind: "BASE TABLE"}},
		ForeignKeys: []ForeignKeyRow{
			{Table: "A.ORDERS", Column: "X", ReferencedTable: "A.ORDERS", ReferencedColumn: "X"},
			{Table: "A.ORDERS", Column: "REGION_ID", ReferencedTable: "SHARED.REGION", ReferencedColumn: "ID"},
		},
	}

	dropped := raw.PruneForeignKeys()
	assert.Equal(t, 1, dropped)
	require.Len(t, raw.ForeignKeys, 1)
	assert.Equal(t, "A.ORDERS", raw.ForeignKeys[0].ReferencedTable)
}

func TestMergeAppendsRows(t *testing.T) {
	a := RawSchema{Tables: []TableRow{{Name: "S1.T", Kind: "BASE TABLE"}}}
	b := RawSchema{
		Tables:  []TableRow{{Name: "S2.T", Kind: "BASE TABLE"}},
		Columns: []ColumnRow{{Table: "S2.T", Name: "ID", DataType: "INT", Position: 1}},
	}

	a.Merge(b)
	assert.Len(t, a.Tables, 2)
	assert.Len(t, a.Columns, 1)
}
