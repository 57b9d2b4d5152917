package duckdb

// nullableString converts an empty string into a SQL NULL.
func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
