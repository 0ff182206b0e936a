package repository

import (
	"fmt"

	"github.com/atadzan/calc-operation-api/pkg/database"
)

// dialect holds the few SQL fragments that differ between SQLite and PostgreSQL.
type dialect struct {
	name        string
	compactDate func(col string) string // YYYYMMDD
	fullDate    func(col string) string // YYYY-MM-DD HH:MM:SS
	sameMonth   func(col string) string
	sameYear    func(col string) string
	sumMoney    func(col string) string
}

var sqliteDialect = dialect{
	name:        database.DriverSQLite,
	compactDate: func(col string) string { return fmt.Sprintf("strftime('%%Y%%m%%d', %s)", col) },
	fullDate:    func(col string) string { return fmt.Sprintf("strftime('%%Y-%%m-%%d %%H:%%M:%%S', %s)", col) },
	sameMonth: func(col string) string {
		return fmt.Sprintf("strftime('%%Y-%%m', %s) = strftime('%%Y-%%m', 'now')", col)
	},
	sameYear: func(col string) string {
		return fmt.Sprintf("strftime('%%Y', %s) = strftime('%%Y', 'now')", col)
	},
	sumMoney: func(col string) string { return fmt.Sprintf("COALESCE(SUM(CAST(%s AS REAL)), 0)", col) },
}

var postgresDialect = dialect{
	name:        database.DriverPostgres,
	compactDate: func(col string) string { return fmt.Sprintf("to_char(%s, 'YYYYMMDD')", col) },
	fullDate:    func(col string) string { return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD HH24:MI:SS')", col) },
	sameMonth: func(col string) string {
		return fmt.Sprintf("date_trunc('month', %s) = date_trunc('month', now())", col)
	},
	sameYear: func(col string) string {
		return fmt.Sprintf("date_part('year', %s) = date_part('year', now())", col)
	},
	sumMoney: func(col string) string { return fmt.Sprintf("COALESCE(SUM(%s), 0)", col) },
}

func dialectFor(driverName string) (dialect, error) {
	switch driverName {
	case database.DriverSQLite:
		return sqliteDialect, nil
	case database.DriverPostgres:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driverName)
	}
}
