package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanItem scans a single key-value row
func ScanItem(scanner Scanner) (*Item, error) {
	item := &Item{}
	var updatedAt sql.NullString

	if err := scanner.Scan(&item.Key, &item.Value, &updatedAt); err != nil {
		return nil, err
	}

	if updatedAt.Valid && updatedAt.String != "" {
		t, err := ParseTimeFromDB(updatedAt.String)
		if err != nil {
			return nil, err
		}
		item.UpdatedAt = &t
	}
	return item, nil
}

// ScanItems scans multiple key-value rows
func ScanItems(rows Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := ScanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
