package criteria

// GroupTable is the lookup table of groups
const GroupTable = "glpi_groups"

// GroupCriteria selects groups
type GroupCriteria struct {
	*DropdownCriteria
}

// NewGroupCriteria creates a group criteria. An empty name defaults to
// groups_id and an empty label to the translated "Group".
func NewGroupCriteria(report Report, name, label, condition string, multiple bool) *GroupCriteria {
	if name == "" {
		name = "groups_id"
	}
	if label == "" {
		if report != nil && report.Translator() != nil {
			label = report.Translator().T("Group")
		} else {
			label = "Group"
		}
	}
	return &GroupCriteria{
		DropdownCriteria: NewDropdownCriteria(report, name, GroupTable, label, condition, multiple),
	}
}
