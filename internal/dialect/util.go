package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders is a helper function to create a comma-separated list of placeholders.
// offset is the zero-based bind index of the first placeholder.
func GeneratePlaceholders(count, offset int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(offset + i)
	}
	return strings.Join(placeholders, ", ")
}

// GenerateRowPlaceholders builds "(..), (..)" groups for a multi-row VALUES clause.
func GenerateRowPlaceholders(rows, cols int, placeholderFunc func(int) string) string {
	groups := make([]string, rows)
	for r := 0; r < rows; r++ {
		groups[r] = "(" + GeneratePlaceholders(cols, r*cols, placeholderFunc) + ")"
	}
	return strings.Join(groups, ", ")
}

// RowsPerStatement returns how many rows of width cols fit in one statement under d's parameter limit.
func RowsPerStatement(d Dialect, cols int) int {
	if cols <= 0 {
		return 1
	}
	n := d.MaxParams() / cols
	if n < 1 {
		return 1
	}
	return n
}

func selectIDs(table, key string) string {
	return fmt.Sprintf("SELECT %s FROM %s", key, table)
}

func count(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
}

func fetchByIDs(table string, cols []string, key string, n int, placeholderFunc func(int) string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s) ORDER BY %s",
		strings.Join(cols, ", "), table, key, GeneratePlaceholders(n, 0, placeholderFunc), key)
}

// appendParam adds key=value to a DSN, choosing the separator for URL style or keyword style DSNs.
func appendParam(dsn, key, value, sep string) string {
	if sep == "&" {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + key + "=" + value
		}
		return dsn + "?" + key + "=" + value
	}
	trimmed := strings.TrimRight(dsn, sep+" ")
	if trimmed == "" {
		return key + "=" + value
	}
	return trimmed + sep + key + "=" + value
}
