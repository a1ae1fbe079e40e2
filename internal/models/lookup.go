package models

// LookupItem is one row of a lookup table as offered by a dropdown
type LookupItem struct {
	ID           int64  `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	CompleteName string `yaml:"completename,omitempty" json:"completename,omitempty"`
	Comment      string `yaml:"comment,omitempty" json:"comment,omitempty"`
	ParentID     int64  `yaml:"parent,omitempty" json:"parent,omitempty"`
	EntityID     int64  `yaml:"entity,omitempty" json:"entity,omitempty"`
	Recursive    bool   `yaml:"recursive,omitempty" json:"recursive,omitempty"`
	Level        int    `yaml:"-" json:"level"`
}

// DisplayName prefers the hierarchical name when one is stored
func (i LookupItem) DisplayName() string {
	if i.CompleteName != "" {
		return i.CompleteName
	}
	return i.Name
}

// LookupQuery narrows the rows listed from a lookup table
type LookupQuery struct {
	Entity     EntityScope
	Conditions []string
}
