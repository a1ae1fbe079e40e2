package models

import "time"

// Bookmark is a saved set of criteria values for a report
type Bookmark struct {
	ID         string    `yaml:"id" json:"id"`
	Name       string    `yaml:"name" json:"name"`
	Report     string    `yaml:"report" json:"report"`
	Query      string    `yaml:"query" json:"query"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at" json:"updated_at"`
	LastUsed   time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
	UsageCount int       `yaml:"usage_count" json:"usage_count"`
}

// QueryResult holds the rows returned by a report query
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	RowsAffected int64
	Duration     time.Duration
	Error        error
}
