package bookmarks

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyreports/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no bookmark matches
var ErrNotFound = errors.New("bookmark not found")

// Manager manages report bookmarks stored in a YAML file
type Manager struct {
	path      string
	bookmarks []models.Bookmark
}

// NewManager creates a manager backed by path, loading it when it exists
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:      path,
		bookmarks: []models.Bookmark{},
	}

	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load bookmarks: %w", err)
		}
	}

	return m, nil
}

// Load loads bookmarks from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read bookmarks file: %w", err)
	}

	if err := yaml.Unmarshal(data, &m.bookmarks); err != nil {
		return fmt.Errorf("failed to parse bookmarks: %w", err)
	}

	return nil
}

// Save writes bookmarks to the YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.bookmarks)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bookmarks file: %w", err)
	}

	return nil
}

// Add saves the criteria query string of a report under name.
// Names are unique regardless of case.
func (m *Manager) Add(name, report, query string) (*models.Bookmark, error) {
	name = strings.TrimSpace(name)
	query = strings.TrimPrefix(strings.TrimSpace(query), "&")

	if err := validate(name, report, query); err != nil {
		return nil, err
	}
	if m.nameTaken(name, "") {
		return nil, fmt.Errorf("a bookmark named '%s' already exists (names are case-insensitive)", name)
	}

	now := time.Now()
	bookmark := models.Bookmark{
		ID:        uuid.New().String(),
		Name:      name,
		Report:    report,
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.bookmarks = append(m.bookmarks, bookmark)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	return &bookmark, nil
}

// Update replaces the name and query of a bookmark
func (m *Manager) Update(id, name, query string) error {
	name = strings.TrimSpace(name)
	query = strings.TrimPrefix(strings.TrimSpace(query), "&")

	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("bookmark '%s': %w", id, ErrNotFound)
	}
	if err := validate(name, m.bookmarks[i].Report, query); err != nil {
		return err
	}
	if m.nameTaken(name, id) {
		return fmt.Errorf("a bookmark named '%s' already exists (names are case-insensitive)", name)
	}

	m.bookmarks[i].Name = name
	m.bookmarks[i].Query = query
	m.bookmarks[i].UpdatedAt = time.Now()
	return m.Save()
}

// Delete deletes a bookmark by ID or name
func (m *Manager) Delete(idOrName string) error {
	i := m.index(idOrName)
	if i < 0 {
		return fmt.Errorf("bookmark '%s': %w", idOrName, ErrNotFound)
	}

	m.bookmarks = append(m.bookmarks[:i], m.bookmarks[i+1:]...)
	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to save bookmarks after deletion: %w", err)
	}
	return nil
}

// Get returns a bookmark by ID or name
func (m *Manager) Get(idOrName string) (*models.Bookmark, error) {
	i := m.index(idOrName)
	if i < 0 {
		return nil, fmt.Errorf("bookmark '%s': %w", idOrName, ErrNotFound)
	}
	b := m.bookmarks[i]
	return &b, nil
}

// GetAll returns all bookmarks
func (m *Manager) GetAll() []models.Bookmark {
	return append([]models.Bookmark{}, m.bookmarks...)
}

// ForReport returns the bookmarks of one report, sorted by name
func (m *Manager) ForReport(report string) []models.Bookmark {
	var result []models.Bookmark
	for _, b := range m.bookmarks {
		if b.Report == report {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

// RecordUsage updates usage statistics and returns the bookmark's values
func (m *Manager) RecordUsage(idOrName string) (url.Values, error) {
	i := m.index(idOrName)
	if i < 0 {
		return nil, fmt.Errorf("bookmark '%s': %w", idOrName, ErrNotFound)
	}

	values, err := url.ParseQuery(m.bookmarks[i].Query)
	if err != nil {
		return nil, fmt.Errorf("invalid bookmark query: %w", err)
	}

	m.bookmarks[i].UsageCount++
	m.bookmarks[i].LastUsed = time.Now()
	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save usage statistics: %w", err)
	}
	return values, nil
}

// GetRecent returns the most recently used bookmarks
func (m *Manager) GetRecent(limit int) []models.Bookmark {
	sorted := m.GetAll()

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastUsed.After(sorted[j].LastUsed)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

func (m *Manager) index(idOrName string) int {
	for i, b := range m.bookmarks {
		if b.ID == idOrName {
			return i
		}
	}
	for i, b := range m.bookmarks {
		if strings.EqualFold(b.Name, idOrName) {
			return i
		}
	}
	return -1
}

func (m *Manager) nameTaken(name, exceptID string) bool {
	for _, b := range m.bookmarks {
		if b.ID != exceptID && strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

func validate(name, report, query string) error {
	if name == "" {
		return fmt.Errorf("bookmark name cannot be empty")
	}
	if report == "" {
		return fmt.Errorf("bookmark report cannot be empty")
	}
	if _, err := url.ParseQuery(query); err != nil {
		return fmt.Errorf("invalid bookmark query: %w", err)
	}
	return nil
}
