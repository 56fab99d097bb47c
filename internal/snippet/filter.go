// Package snippet generates the dataframe source code shown in report preview bars.
//
// Everything here is a pure function of its inputs: the report generator calls it once
// per table cell, and the view engine calls it when a cell is activated.
package snippet

import (
	"fmt"
	"strings"
)

// Dialect names the dataframe library a snippet is written for.
type Dialect string

// Supported dialects.
const (
	Pandas Dialect = "pandas"
	Polars Dialect = "polars"
)

// DefaultDialect is used when no dialect is configured.
const DefaultDialect = Pandas

// Dialects returns the supported dialects in a stable order.
func Dialects() []Dialect {
	return []Dialect{Pandas, Polars}
}

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	switch d {
	case Pandas, Polars:
		return true
	default:
		return false
	}
}

// ParseDialect normalizes a user supplied dialect name.
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DefaultDialect, nil
	}
	if !d.Valid() {
		return "", fmt.Errorf("unknown dataframe library %q (expected one of: pandas, polars)", s)
	}
	return d, nil
}

// Filter returns code selecting the rows where a column equals a value.
//
// columnRepr and valueRepr must already be source-level literals (see Repr).
// When isNull is set the value is ignored and an is-null predicate is produced.
// An unknown dialect yields a readable message instead of code, since the result
// is displayed to the user as is.
func Filter(columnRepr, valueRepr string, isNull bool, dialect Dialect) string {
	switch dialect {
	case Polars:
		if isNull {
			return fmt.Sprintf("df.filter(pl.col(%s).is_null())", columnRepr)
		}
		return fmt.Sprintf("df.filter(pl.col(%s) == %s)", columnRepr, valueRepr)
	case Pandas:
		if isNull {
			return fmt.Sprintf("df.loc[df[%s].isnull()]", columnRepr)
		}
		return fmt.Sprintf("df.loc[df[%s] == %s]", columnRepr, valueRepr)
	default:
		return "Unknown dataframe library: " + string(dialect)
	}
}

// IsIn returns code selecting the rows where a column takes one of several values.
func IsIn(columnRepr string, valueReprs []string, dialect Dialect) string {
	values := "[" + strings.Join(valueReprs, ", ") + "]"
	switch dialect {
	case Polars:
		return fmt.Sprintf("df.filter(pl.col(%s).is_in(%s))", columnRepr, values)
	case Pandas:
		return fmt.Sprintf("df.loc[df[%s].isin(%s)]", columnRepr, values)
	default:
		return "Unknown dataframe library: " + string(dialect)
	}
}

// ColumnList formats already-quoted column names as a list literal.
func ColumnList(nameReprs []string) string {
	return "[" + strings.Join(nameReprs, ", ") + "]"
}
