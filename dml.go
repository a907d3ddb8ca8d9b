package binlog

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RowChangeKind identifies which DML statement a RowChange reconstructs.
type RowChangeKind int

const (
	RowInsert RowChangeKind = iota
	RowUpdate
	RowDelete
)

func (k RowChangeKind) String() string {
	switch k {
	case RowInsert:
		return "insert"
	case RowUpdate:
		return "update"
	case RowDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// RowChange is one DML statement reconstructed from a single row image of a
// RowsEvent: a parameterized SQL fragment, shared across every row of the
// same event, plus the value vector for this particular row.
type RowChange struct {
	Schema string
	Table  string
	Kind   RowChangeKind
	SQL    string        // parameterized fragment, placeholders as '?'
	Params []interface{} // one value per '?', in SQL order

	// ParamColumns names the column each entry of Params binds to, in the
	// same order; RenderLiteral uses it to attribute base64-encoded
	// blob/geometry substitutions back to a column name.
	ParamColumns []string

	// Suppressed is set when an UPDATE or DELETE could not be
	// reconstructed because the table has no key column in colDefs; SQL
	// and Params are empty in that case.
	Suppressed bool
}

// ReconstructRow builds the RowChange for one row image of re, using colDefs
// (the live column metadata fetched via Remote.FieldList, in table-ordinal
// order) to resolve column names and key flags, and values/valuesBeforeUpdate
// (as returned by NextRow) to supply the parameters.
func ReconstructRow(re RowsEvent, colDefs []ColumnDefinition, values, valuesBeforeUpdate []interface{}) (*RowChange, error) {
	if re.TableMap == nil {
		return nil, fmt.Errorf("binlog: ReconstructRow: dummy rows event has no table map")
	}
	schema, table := re.TableMap.SchemaName, re.TableMap.TableName
	switch {
	case re.eventType.IsWriteRows():
		return reconstructInsert(schema, table, colDefs, re.Columns(), values)
	case re.eventType.IsDeleteRows():
		return reconstructDelete(schema, table, colDefs, re.Columns(), values)
	case re.eventType.IsUpdateRows():
		return reconstructUpdate(schema, table, colDefs,
			re.Columns(), values, re.ColumnsBeforeUpdate(), valuesBeforeUpdate)
	default:
		return nil, fmt.Errorf("binlog: ReconstructRow: %s is not a rows event", re.eventType)
	}
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func colName(colDefs []ColumnDefinition, col Column) string {
	if col.Ordinal < len(colDefs) {
		return colDefs[col.Ordinal].Name
	}
	return col.Name
}

func isKeyColumn(colDefs []ColumnDefinition, col Column) bool {
	return col.Ordinal < len(colDefs) && colDefs[col.Ordinal].IsKey()
}

func reconstructInsert(schema, table string, colDefs []ColumnDefinition, cols []Column, values []interface{}) (*RowChange, error) {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	paramCols := make([]string, len(cols))
	for i, c := range cols {
		n := colName(colDefs, c)
		names[i] = quoteIdent(n)
		placeholders[i] = "?"
		paramCols[i] = n
	}
	sql := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		quoteIdent(schema), quoteIdent(table), strings.Join(names, ","), strings.Join(placeholders, ","))
	return &RowChange{Schema: schema, Table: table, Kind: RowInsert, SQL: sql, Params: values, ParamColumns: paramCols}, nil
}

func reconstructDelete(schema, table string, colDefs []ColumnDefinition, cols []Column, values []interface{}) (*RowChange, error) {
	where, params, paramCols := keyClause(colDefs, cols, values)
	if where == "" {
		return &RowChange{Schema: schema, Table: table, Kind: RowDelete, Suppressed: true}, nil
	}
	sql := fmt.Sprintf("DELETE FROM %s.%s WHERE %s", quoteIdent(schema), quoteIdent(table), where)
	return &RowChange{Schema: schema, Table: table, Kind: RowDelete, SQL: sql, Params: params, ParamColumns: paramCols}, nil
}

func reconstructUpdate(schema, table string, colDefs []ColumnDefinition,
	afterCols []Column, afterValues []interface{}, beforeCols []Column, beforeValues []interface{}) (*RowChange, error) {
	where, whereParams, whereParamCols := keyClause(colDefs, beforeCols, beforeValues)
	if where == "" {
		return &RowChange{Schema: schema, Table: table, Kind: RowUpdate, Suppressed: true}, nil
	}
	set := make([]string, len(afterCols))
	params := make([]interface{}, 0, len(afterCols)+len(whereParams))
	paramCols := make([]string, 0, len(afterCols)+len(whereParamCols))
	for i, c := range afterCols {
		n := colName(colDefs, c)
		set[i] = quoteIdent(n) + " = ?"
		params = append(params, afterValues[i])
		paramCols = append(paramCols, n)
	}
	params = append(params, whereParams...)
	paramCols = append(paramCols, whereParamCols...)
	sql := fmt.Sprintf("UPDATE %s.%s SET %s WHERE %s",
		quoteIdent(schema), quoteIdent(table), strings.Join(set, ","), where)
	return &RowChange{Schema: schema, Table: table, Kind: RowUpdate, SQL: sql, Params: params, ParamColumns: paramCols}, nil
}

// keyClause builds a "k1 = ? AND k2 = ?" fragment from the subset of cols
// whose ColumnDefinition marks it as a key (primary or unique). Returns ""
// if none of cols is a key column, per spec: ambiguous WHERE must be
// suppressed rather than guessed.
func keyClause(colDefs []ColumnDefinition, cols []Column, values []interface{}) (string, []interface{}, []string) {
	var parts []string
	var params []interface{}
	var paramCols []string
	for i, c := range cols {
		if !isKeyColumn(colDefs, c) {
			continue
		}
		n := colName(colDefs, c)
		parts = append(parts, quoteIdent(n)+" = ?")
		params = append(params, values[i])
		paramCols = append(paramCols, n)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(parts, " AND "), params, paramCols
}

// RenderLiteral expands rc's parameterized SQL into a fully literal
// statement, substituting each '?' with its rendered value in order.
// encodedColumns names which substitutions are base64-encoded blob/geometry
// payloads rather than the literal SQL of a scalar value, matching the
// out-of-band tracking the DML reconstruction contract requires for binary
// columns.
func RenderLiteral(rc *RowChange) (sql string, encodedColumns []string) {
	var b strings.Builder
	paramIdx := 0
	for i := 0; i < len(rc.SQL); i++ {
		c := rc.SQL[i]
		if c != '?' {
			b.WriteByte(c)
			continue
		}
		v := rc.Params[paramIdx]
		lit, encoded := renderLiteralValue(v)
		if encoded && paramIdx < len(rc.ParamColumns) {
			encodedColumns = append(encodedColumns, rc.ParamColumns[paramIdx])
		}
		b.WriteString(lit)
		paramIdx++
	}
	return b.String(), encodedColumns
}

func renderLiteralValue(v interface{}) (literal string, base64Encoded bool) {
	switch v := v.(type) {
	case nil:
		return "NULL", false
	case Null:
		return "NULL", false
	case []byte:
		return quoteSQLString(base64.StdEncoding.EncodeToString(v)), true
	case string:
		return quoteSQLString(v), false
	case Decimal:
		return v.String(), false
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), false
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), false
	case time.Time:
		if v.IsZero() {
			return quoteSQLString("0000-00-00 00:00:00"), false
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return quoteSQLString(v.Format("2006-01-02")), false
		}
		return quoteSQLString(v.Format("2006-01-02 15:04:05.000000")), false
	case time.Duration:
		return quoteSQLString(formatTimeDuration(v)), false
	default:
		return fmt.Sprintf("%v", v), false
	}
}

func formatTimeDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)
	d -= time.Duration(seconds) * time.Second
	s := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if d > 0 {
		s += fmt.Sprintf(".%06d", d/time.Microsecond)
	}
	if neg {
		s = "-" + s
	}
	return s
}
