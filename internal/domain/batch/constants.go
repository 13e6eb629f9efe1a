package batch

const (
	PayTypeMixed   = "mixed"
	PayTypeExpense = "expense"

	// ClientMultiple is stored in a check's clientId when more than one
	// client contributed to it.
	ClientMultiple = "multiple"

	// CheckNumberFloor is the lowest number a counter may hand out. A
	// stored value below it is treated as corrupt and clamped up.
	CheckNumberFloor = 100

	WarningMissingRelationship = "missing_relationship"
)

// perDiemDayOrder fixes iteration over the per-day breakdown fields.
var perDiemDayOrder = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
