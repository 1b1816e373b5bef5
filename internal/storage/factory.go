package storage

// NewStorage creates a new SQLite storage instance
func NewStorage(dataDir string) (Store, error) {
	return NewSQLiteStorage(dataDir)
}
