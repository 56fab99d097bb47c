package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load runs query and reads the whole result set into a Frame.
func Load(ctx context.Context, db Queryer, query string, args ...any) (*Frame, error) {
	//nolint:rowserrcheck // rows.Err() is checked after iteration
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	frame := &Frame{Columns: make([]Column, len(types))}
	for i, ct := range types {
		frame.Columns[i] = Column{
			Name:   ct.Name(),
			DBType: strings.ToUpper(ct.DatabaseTypeName()),
		}
	}

	dest := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range dest {
			frame.Columns[i].Values = append(frame.Columns[i].Values, normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range frame.Columns {
		col := &frame.Columns[i]
		col.Kind = inferKind(col.DBType, col.Values)
		if col.Kind == KindNumeric {
			for j, v := range col.Values {
				col.Values[j] = parseDecimal(v)
			}
		}
		if col.Kind == KindString || col.Kind == KindCategorical {
			for j, v := range col.Values {
				if b, ok := v.([]byte); ok {
					col.Values[j] = string(b)
				}
			}
		}
	}
	return frame, nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, time.Time:
		return x
	case []byte:
		return append([]byte(nil), x...)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) //nolint:gosec // counts above MaxInt64 are not expected in sample data
	case float32:
		return float64(x)
	case *big.Int:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

var numericTypes = map[string]bool{
	"TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "INT": true, "INTEGER": true, "BIGINT": true,
	"HUGEINT": true, "UTINYINT": true, "USMALLINT": true, "UINTEGER": true, "UBIGINT": true, "UHUGEINT": true,
	"INT1": true, "INT2": true, "INT4": true, "INT8": true, "SERIAL": true, "BIGSERIAL": true,
	"DECIMAL": true, "NUMERIC": true, "REAL": true, "FLOAT": true, "FLOAT4": true, "FLOAT8": true,
	"DOUBLE": true, "DOUBLE PRECISION": true,
}

var datetimeTypes = map[string]bool{
	"DATE": true, "DATETIME": true, "TIME": true, "TIMETZ": true, "TIMESTAMP": true, "TIMESTAMPTZ": true,
	"TIMESTAMP_S": true, "TIMESTAMP_MS": true, "TIMESTAMP_NS": true,
	"TIMESTAMP WITH TIME ZONE": true, "TIMESTAMP WITHOUT TIME ZONE": true,
	"TIME WITH TIME ZONE": true, "TIME WITHOUT TIME ZONE": true,
}

var stringTypes = map[string]bool{
	"CHAR": true, "VARCHAR": true, "NCHAR": true, "NVARCHAR": true, "BPCHAR": true, "CHARACTER": true,
	"CHARACTER VARYING": true, "TEXT": true, "TINYTEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true,
	"STRING": true, "UUID": true, "NAME": true, "CITEXT": true,
}

// baseTypeName drops type parameters and an UNSIGNED marker: "DECIMAL(10,2)" is "DECIMAL".
func baseTypeName(t string) string {
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	t = strings.TrimPrefix(t, "UNSIGNED ")
	return strings.TrimSuffix(t, " UNSIGNED")
}

// inferKind maps a database type name to a Kind, falling back to the Go type of
// the first non-null value when the name is unknown.
func inferKind(dbType string, values []any) Kind {
	t := baseTypeName(dbType)
	switch {
	case t == "":
	case strings.HasSuffix(t, "BLOB"), t == "BYTEA", t == "BINARY", t == "VARBINARY", t == "INTERVAL":
		return KindOther
	case t == "ENUM":
		return KindCategorical
	case numericTypes[t]:
		return KindNumeric
	case t == "BOOL", t == "BOOLEAN":
		return KindBoolean
	case datetimeTypes[t]:
		return KindDatetime
	case stringTypes[t]:
		return KindString
	}

	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64, float64:
			return KindNumeric
		case bool:
			return KindBoolean
		case time.Time:
			return KindDatetime
		case string, []byte:
			return KindString
		default:
			return KindOther
		}
	}
	return KindOther
}

// parseDecimal turns the textual form drivers use for DECIMAL and NUMERIC values
// into a float64. Values that do not parse are kept as they are.
func parseDecimal(v any) any {
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case []byte:
		text = string(x)
	default:
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return v
	}
	return f
}
