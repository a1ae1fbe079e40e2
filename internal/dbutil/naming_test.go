package dbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableForForeignKey(t *testing.T) {
	n := NewNaming()
	tests := []struct {
		field string
		want  string
	}{
		{"groups_id", "glpi_groups"},
		{"users_id_tech", "glpi_users"},
		{"_groups_id_requester", "glpi_groups"},
		{"entities_id", "glpi_entities"},
		{"name", ""},
		{"id", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, n.TableForForeignKey(tt.field), tt.field)
	}
}

func TestForeignKeyForTable(t *testing.T) {
	n := NewNaming()
	assert.Equal(t, "groups_id", n.ForeignKeyForTable("glpi_groups"))
	assert.Equal(t, "itilcategories_id", n.ForeignKeyForTable("glpi_itilcategories"))
	assert.Equal(t, "", n.ForeignKeyForTable("groups"))
}

func TestTableForItemType(t *testing.T) {
	n := NewNaming()
	tests := []struct {
		itemType string
		want     string
	}{
		{"Group", "glpi_groups"},
		{"Entity", "glpi_entities"},
		{"ComputerModel", "glpi_computermodels"},
		{"ITILCategory", "glpi_itilcategories"},
		{"NetworkEquipment", "glpi_networkequipments"},
		{"Software", "glpi_softwares"},
		{"State", "glpi_states"},
		{"PluginReportsStat", "glpi_plugin_reports_stats"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, n.TableForItemType(tt.itemType), tt.itemType)
	}
}

func TestItemTypeForTable(t *testing.T) {
	n := NewNaming("PluginReportsStat")
	tests := []struct {
		table string
		want  string
	}{
		{"glpi_groups", "Group"},
		{"glpi_entities", "Entity"},
		{"glpi_computermodels", "ComputerModel"},
		{"glpi_itilcategories", "ITILCategory"},
		{"glpi_plugin_reports_stats", "PluginReportsStat"},
		{"glpi_groups_users", "Group_User"},
		{"groups", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, n.ItemTypeForTable(tt.table), tt.table)
	}
}

func TestPluralSingularRoundTrip(t *testing.T) {
	words := []string{"group", "entity", "status", "switch", "box", "class", "day", "criteria", "data", "user", "pdu"}
	for _, w := range words {
		assert.Equal(t, w, Singular(Plural(w)), w)
	}
	assert.Equal(t, "criterias", Plural("criteria"))
	assert.Equal(t, "categories", Plural("category"))
}
