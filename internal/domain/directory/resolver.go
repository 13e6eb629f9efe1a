package directory

// ResolveForTab returns every active relationship the employee holds with
// the tab's client. An employee who has relationships but none for this
// client gets an empty list: that means "not applicable here", never "fall
// back to the legacy rate".
func ResolveForTab(employee Employee, clientID string) []PayRelationship {
	var matched []PayRelationship
	for _, rel := range employee.Relationships {
		if rel.Active && rel.ClientID == clientID {
			matched = append(matched, rel)
		}
	}
	return matched
}

// UsesLegacyPay reports whether the employee's single pay type/rate fields
// govern their entries. Only employees with no relationships at all qualify.
func UsesLegacyPay(employee Employee) bool {
	return len(employee.Relationships) == 0
}

// DefaultSelection returns the ids of every active relationship with the
// client. An employee holding both an hourly and a per-diem arrangement at
// one client contributes both to a single check by default.
func DefaultSelection(employee Employee, clientID string) []string {
	var ids []string
	for _, rel := range ResolveForTab(employee, clientID) {
		ids = append(ids, rel.ID)
	}
	return ids
}
