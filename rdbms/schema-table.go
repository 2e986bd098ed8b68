package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/helper"
)

// SchemaTable is an allow-listed [database.][schema.]table identifier.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

// NewSchemaTable validates s and returns it as a SchemaTable.
func NewSchemaTable(s string) (SchemaTable, error) {
	s = strings.TrimSpace(s)
	if !helper.IsValidTableIdentifier(s) {
		return SchemaTable{}, fmt.Errorf("invalid table identifier %q", s)
	}
	return SchemaTable{SchemaTable: s}, nil
}

// GetTable returns the last part of the identifier.
func (st *SchemaTable) GetTable() string {
	parts := strings.Split(st.SchemaTable, ".")
	return parts[len(parts)-1]
}

// GetSchema returns the identifier without the table part or "" if there is none.
func (st *SchemaTable) GetSchema() string {
	i := strings.LastIndex(st.SchemaTable, ".")
	if i < 0 {
		return ""
	}
	return st.SchemaTable[:i]
}

// Quoted returns the identifier in the form used in SQL for the given connection type.
// SQL Server and MySQL parts are delimited, which does not change how they resolve.
// Other databases get the validated identifier as-is so that unquoted names keep the
// case folding of the database (lower case for Postgres, upper case for Snowflake and Netezza).
func (st *SchemaTable) Quoted(connectionType string) string {
	var lq, rq string
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		lq, rq = "[", "]"
	case constants.ConnectionTypeMySql:
		lq, rq = "`", "`"
	default:
		return st.SchemaTable
	}
	parts := strings.Split(st.SchemaTable, ".")
	for idx, p := range parts {
		parts[idx] = lq + p + rq
	}
	return strings.Join(parts, ".")
}

// SelectAllSql returns the full-table SELECT statement for this identifier.
func (st *SchemaTable) SelectAllSql(connectionType string) string {
	return "SELECT * FROM " + st.Quoted(connectionType)
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}
