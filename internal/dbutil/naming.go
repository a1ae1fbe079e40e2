// Package dbutil resolves lookup table names from field names and item
// types, following the asset database's naming conventions.
package dbutil

import (
	"regexp"
	"strings"
	"unicode"
)

// TablePrefix starts every table name of the asset database
const TablePrefix = "glpi_"

// NotAvailable marks a criteria that is not bound to any table
const NotAvailable = "N/A"

var (
	foreignKeyPattern = regexp.MustCompile(`._id(_|$)`)
	pluginTypePattern = regexp.MustCompile(`^Plugin([A-Z][a-z0-9]+)([A-Z]\w+)$`)
	pluginTablePrefix = regexp.MustCompile(`^plugin_([a-z0-9]+)_`)
)

type inflection struct {
	pattern     *regexp.Regexp
	replacement string
}

func rules(pairs ...string) []inflection {
	out := make([]inflection, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, inflection{regexp.MustCompile(pairs[i]), pairs[i+1]})
	}
	return out
}

// First matching rule wins.
var pluralRules = rules(
	`pdus$`, "pdus",
	`(data|metrics|criterias)$`, "${1}",
	`criteria$`, "criterias",
	`crisis$`, "crises",
	`(ss|ch|sh|x)$`, "${1}es",
	`status$`, "statuses",
	`([ae])y$`, "${1}ys",
	`y$`, "ies",
	`([^s])$`, "${1}s",
)

var singularRules = rules(
	`pdus$`, "pdu",
	`(data|metrics|criteria)$`, "${1}",
	`criterias$`, "criteria",
	`crises$`, "crisis",
	`statuses$`, "status",
	`(ss|ch|sh|x)es$`, "${1}",
	`([ae])ys$`, "${1}y",
	`ies$`, "y",
	`(ss|us)$`, "${1}",
	`s$`, "",
)

func inflect(word string, set []inflection) string {
	for _, r := range set {
		if r.pattern.MatchString(word) {
			return r.pattern.ReplaceAllString(word, r.replacement)
		}
	}
	return word
}

// Plural returns the plural form used in table names
func Plural(word string) string {
	return inflect(word, pluralRules)
}

// Singular reverses Plural
func Singular(word string) string {
	return inflect(word, singularRules)
}

// IsForeignKeyField reports whether field follows the <table>_id[_suffix] convention
func IsForeignKeyField(field string) bool {
	return foreignKeyPattern.MatchString(field)
}

// Naming implements the table and item type conventions of the asset database.
// ItemTypes lists known item types so table names can be mapped back to
// their canonical spelling (glpi_computermodels -> ComputerModel).
type Naming struct {
	ItemTypes []string
}

// DefaultItemTypes are the item types shipped with the asset database that
// reports commonly filter on
var DefaultItemTypes = []string{
	"Computer", "ComputerModel", "ComputerType", "Entity", "Group",
	"ITILCategory", "Location", "Manufacturer", "Monitor", "NetworkEquipment",
	"OperatingSystem", "Peripheral", "Phone", "Printer", "Profile", "Software",
	"SoftwareCategory", "State", "Supplier", "Ticket", "User", "UserCategory",
	"UserTitle",
}

// NewNaming returns naming rules aware of DefaultItemTypes and extra
func NewNaming(extra ...string) Naming {
	types := append([]string{}, DefaultItemTypes...)
	return Naming{ItemTypes: append(types, extra...)}
}

// TableForForeignKey maps groups_id to glpi_groups and users_id_tech to
// glpi_users. Fields that are not foreign keys yield "".
func (Naming) TableForForeignKey(field string) string {
	if !IsForeignKeyField(field) {
		return ""
	}
	field = strings.TrimPrefix(field, "_")
	return TablePrefix + field[:strings.Index(field, "_id")]
}

// ForeignKeyForTable maps glpi_groups to groups_id
func (Naming) ForeignKeyForTable(table string) string {
	if !strings.HasPrefix(table, TablePrefix) {
		return ""
	}
	return strings.TrimPrefix(table, TablePrefix) + "_id"
}

// TableForItemType maps Group to glpi_groups and PluginReportsStat to
// glpi_plugin_reports_stats
func (Naming) TableForItemType(itemType string) string {
	if itemType == "" {
		return ""
	}

	prefix := TablePrefix
	name := itemType
	if m := pluginTypePattern.FindStringSubmatch(itemType); m != nil {
		prefix += "plugin_" + strings.ToLower(m[1]) + "_"
		name = m[2]
	}

	name = strings.ToLower(strings.ReplaceAll(name, `\`, "_"))
	return prefix + Plural(name)
}

// ItemTypeForTable reverses TableForItemType. Tables outside the database
// prefix yield "".
func (n Naming) ItemTypeForTable(table string) string {
	if !strings.HasPrefix(table, TablePrefix) {
		return ""
	}

	name := strings.TrimPrefix(table, TablePrefix)
	prefix := ""
	if m := pluginTablePrefix.FindStringSubmatch(name); m != nil {
		prefix = "Plugin" + upperFirst(m[1])
		name = strings.TrimPrefix(name, m[0])
	}

	parts := strings.Split(name, "_")
	for i, part := range parts {
		parts[i] = upperFirst(Singular(part))
	}
	itemType := prefix + strings.Join(parts, "_")

	for _, known := range n.ItemTypes {
		if strings.EqualFold(known, itemType) {
			return known
		}
	}
	return itemType
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
