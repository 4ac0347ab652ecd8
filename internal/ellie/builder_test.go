package ellie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ellietransfer/internal/catalog"
	"ellietransfer/internal/relations"
)

func shopCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build(catalog.RawSchema{
		Tables: []catalog.TableRow{
			{Name: "PUBLIC.CUSTOMER", Kind: "BASE TABLE"},
			{Name: "PUBLIC.ORDERS", Kind: "BASE TABLE"},
		},
		Columns: []catalog.ColumnRow{
			{Table: "PUBLIC.CUSTOMER", Name: "ID", DataType: "NUMBER(38,0)", Position: 1, PrimaryKey: true},
			{Table: "PUBLIC.CUSTOMER", Name: "NAME", DataType: "VARCHAR(120)", Nullable: true, Position: 2},
			{Table: "PUBLIC.ORDERS", Name: "ID", DataType: "NUMBER(38,0)", Position: 1, PrimaryKey: true},
			{Table: "PUBLIC.ORDERS", Name: "CUSTOMER_ID", DataType: "NUMBER(38,0)", Position: 2},
		},
		ForeignKeys: []catalog.ForeignKeyRow{
			{Table: "PUBLIC.ORDERS", Column: "CUSTOMER_ID", ReferencedTable: "PUBLIC.CUSTOMER", ReferencedColumn: "ID"},
		},
	}, catalog.Options{})
	require.NoError(t, err)
	return cat
}

func TestBuildModelShape(t *testing.T) {
	cat := shopCatalog(t)
	rels := relations.Resolve(cat, relations.Options{})

	m, err := BuildModel(cat, rels, BuildOptions{Name: "Webshop", FolderID: 7})
	require.NoError(t, err)

	assert.Equal(t, "Webshop", m.Name)
	assert.Equal(t, LevelPhysical, m.Level)
	assert.Equal(t, 7, m.FolderID)

	require.Len(t, m.Entities, 2)
	customer := m.Entities[0]
	assert.Equal(t, "CUSTOMER", customer.Name)
	require.Len(t, customer.Attributes, 2)
	assert.Equal(t, "ID", customer.Attributes[0].Name)
	assert.True(t, customer.Attributes[0].Metadata.PK)
	assert.False(t, customer.Attributes[0].Metadata.FK)
	assert.Equal(t, "NUMBER(38,0)", customer.Attributes[0].Metadata.DataType)
	assert.Equal(t, "VARCHAR(120)", customer.Attributes[1].Metadata.DataType)

	orders := m.Entities[1]
	require.Len(t, orders.Attributes, 2)
	assert.False(t, orders.Attributes[1].Metadata.PK)
	assert.True(t, orders.Attributes[1].Metadata.FK)
}

func TestBuildModelRelationshipEnds(t *testing.T) {
	cat := shopCatalog(t)
	rels := relations.Resolve(cat, relations.Options{})

	m, err := BuildModel(cat, rels, BuildOptions{Name: "Webshop"})
	require.NoError(t, err)

	require.Len(t, m.Relationships, 1)
	r := m.Relationships[0]
	assert.Equal(t, "CUSTOMER", r.SourceEntity.Name)
	assert.Equal(t, "one", r.SourceEntity.StartType)
	assert.Equal(t, []string{"ID"}, r.SourceEntity.AttributeNames)
	assert.Equal(t, "ORDERS", r.TargetEntity.Name)
	assert.Equal(t, "many", r.TargetEntity.EndType)
	assert.Equal(t, []string{"CUSTOMER_ID"}, r.TargetEntity.AttributeNames)
	assert.Equal(t, EntityID("PUBLIC.CUSTOMER"), r.SourceEntity.ID)
	assert.Equal(t, EntityID("PUBLIC.ORDERS"), r.TargetEntity.ID)
	assert.NotNil(t, r.Description)
}

func TestBuildModelDeterministic(t *testing.T) {
	build := func() *Model {
		cat := shopCatalog(t)
		m, err := BuildModel(cat, relations.Resolve(cat, relations.Options{}), BuildOptions{Name: "Webshop"})
		require.NoError(t, err)
		return m
	}

	assert.Equal(t, build(), build())
}

func TestBuildModelExcludesViews(t *testing.T) {
	raw := catalog.RawSchema{
		Tables: []catalog.TableRow{
			{Name: "PUBLIC.CUSTOMER", Kind: "BASE TABLE"},
			{Name: "PUBLIC.ORDERS", Kind: "BASE TABLE"},
			{Name: "PUBLIC.PRODUCT", Kind: "BASE TABLE"},
			{Name: "PUBLIC.V_SALES", Kind: "VIEW"},
			{Name: "PUBLIC.V_RETURNS", Kind: "VIEW"},
		},
	}
	for _, tbl := range raw.Tables {
		raw.Columns = append(raw.Columns, catalog.ColumnRow{
			Table: tbl.Name, Name: "ID", DataType: "NUMBER", Position: 1, PrimaryKey: true,
		})
	}

	cat, err := catalog.Build(raw, catalog.Options{IncludeViews: false})
	require.NoError(t, err)

	m, err := BuildModel(cat, nil, BuildOptions{Name: "Webshop"})
	require.NoError(t, err)
	require.Len(t, m.Entities, 3)
	for _, e := range m.Entities {
		assert.NotContains(t, e.Name, "V_")
	}
}

func TestBuildModelSelfReference(t *testing.T) {
	cat, err := catalog.Build(catalog.RawSchema{
		Tables: []catalog.TableRow{{Name: "HR.EMPLOYEE", Kind: "BASE TABLE"}},
		Columns: []catalog.ColumnRow{
			{Table: "HR.EMPLOYEE", Name: "ID", DataType: "NUMBER", Position: 1, PrimaryKey: true},
			{Table: "HR.EMPLOYEE", Name: "MANAGER_ID", DataType: "NUMBER", Position: 2},
		},
		ForeignKeys: []catalog.ForeignKeyRow{
			{Table: "HR.EMPLOYEE", Column: "MANAGER_ID", ReferencedTable: "HR.EMPLOYEE", ReferencedColumn: "ID"},
		},
	}, catalog.Options{})
	require.NoError(t, err)

	m, err := BuildModel(cat, relations.Resolve(cat, relations.Options{}), BuildOptions{Name: "People"})
	require.NoError(t, err)

	require.Len(t, m.Relationships, 1)
	assert.Equal(t, m.Relationships[0].SourceEntity.ID, m.Relationships[0].TargetEntity.ID)
}

func TestBuildModelEmptyCatalog(t *testing.T) {
	cat, err := catalog.Build(catalog.RawSchema{}, catalog.Options{})
	require.NoError(t, err)

	_, err = BuildModel(cat, nil, BuildOptions{Name: "Empty"})
	var empty *EmptyModelError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "Empty", empty.Model)
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, EntityID("PUBLIC.ORDERS"), EntityID("public.orders"))
	assert.NotEqual(t, EntityID("PUBLIC.ORDERS"), EntityID("PUBLIC.CUSTOMER"))
	assert.Len(t, EntityID("PUBLIC.ORDERS"), 36)
}
