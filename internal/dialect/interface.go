package dialect

// Dialect abstracts database-specific SQL used by the sync.
type Dialect interface {
	Name() string

	// Identity / Verification Queries
	SelectIDsQuery(table, key string) string
	CountQuery(table string) string

	// Fetch & Load
	FetchByIDsQuery(table string, cols []string, key string, n int) string
	InsertIgnoreQuery(table string, cols []string, key string, rows int) string
	Placeholder(index int) string // Returns ?, $1, @p1, etc.
	MaxParams() int               // Bind parameters allowed in one statement

	// Connection Setup
	ReadOnlyDSN(dsn string) (string, error)
	ReadOnlySession() string // Statement run on the source session, "" if none

	// Introspection (check command)
	VersionQuery() string
	ColumnsQuery() string // One bind parameter: the table name
}
