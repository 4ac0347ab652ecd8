package catalog

import "strings"

// typeBuckets maps normalized native type names onto semantic types.
// It covers the Snowflake, PostgreSQL, SQL Server and SQLite names the
// supported readers can produce. Unlisted names fall back to TypeOther.
var typeBuckets = map[string]Type{
	"INT":       TypeInteger,
	"INTEGER":   TypeInteger,
	"BIGINT":    TypeInteger,
	"SMALLINT":  TypeInteger,
	"TINYINT":   TypeInteger,
	"BYTEINT":   TypeInteger,
	"MEDIUMINT": TypeInteger,
	"INT2":      TypeInteger,
	"INT4":      TypeInteger,
	"INT8":      TypeInteger,
	"SERIAL":    TypeInteger,
	"BIGSERIAL": TypeInteger,

	"NUMBER":           TypeDecimal,
	"DECIMAL":          TypeDecimal,
	"NUMERIC":          TypeDecimal,
	"FLOAT":            TypeDecimal,
	"FLOAT4":           TypeDecimal,
	"FLOAT8":           TypeDecimal,
	"DOUBLE":           TypeDecimal,
	"DOUBLE PRECISION": TypeDecimal,
	"REAL":             TypeDecimal,
	"MONEY":            TypeDecimal,
	"SMALLMONEY":       TypeDecimal,

	"VARCHAR":           TypeText,
	"NVARCHAR":          TypeText,
	"CHAR":              TypeText,
	"NCHAR":             TypeText,
	"CHARACTER":         TypeText,
	"CHARACTER VARYING": TypeText,
	"STRING":            TypeText,
	"TEXT":              TypeText,
	"NTEXT":             TypeText,
	"CLOB":              TypeText,
	"UUID":              TypeText,
	"UNIQUEIDENTIFIER":  TypeText,

	"DATE": TypeDate,

	"TIMESTAMP":                   TypeTimestamp,
	"TIMESTAMP_LTZ":               TypeTimestamp,
	"TIMESTAMP_NTZ":               TypeTimestamp,
	"TIMESTAMP_TZ":                TypeTimestamp,
	"TIMESTAMPTZ":                 TypeTimestamp,
	"TIMESTAMP WITH TIME ZONE":    TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": TypeTimestamp,
	"DATETIME":                    TypeTimestamp,
	"DATETIME2":                   TypeTimestamp,
	"SMALLDATETIME":               TypeTimestamp,
	"DATETIMEOFFSET":              TypeTimestamp,
	"TIME":                        TypeTimestamp,
	"TIME WITH TIME ZONE":         TypeTimestamp,
	"TIME WITHOUT TIME ZONE":      TypeTimestamp,

	"BOOLEAN": TypeBoolean,
	"BOOL":    TypeBoolean,
	"BIT":     TypeBoolean,

	// Semi-structured Snowflake types stay opaque on the model side.
	"VARIANT": TypeOther,
	"OBJECT":  TypeOther,
	"ARRAY":   TypeOther,
}

// MapType buckets a native database type into its semantic type.
// Length and precision arguments are ignored, so VARCHAR(255) and
// NUMBER(38,0) bucket the same as their bare forms.
func MapType(native string) Type {
	if t, ok := typeBuckets[normalizeType(native)]; ok {
		return t
	}
	return TypeOther
}

func normalizeType(native string) string {
	s := strings.ToUpper(strings.TrimSpace(native))
	if i := strings.IndexByte(s, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(s[i:], ')'); j >= 0 {
			rest = s[i+j+1:]
		}
		s = s[:i] + rest
	}
	return strings.Join(strings.Fields(s), " ")
}
