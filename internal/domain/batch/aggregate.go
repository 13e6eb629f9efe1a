package batch

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"paybatch/internal/domain/directory"
)

var overtimeMultiplier = decimal.RequireFromString("1.5")

// Engine consolidates entered pay facts across tabs into one result per
// employee. It is pure over the snapshot: no side effects, safe to re-run
// after an external refresh, identical input yields identical output.
type Engine struct {
	employees []directory.Employee
	clients   map[string]directory.Client
}

func NewEngine(employees []directory.Employee, clients []directory.Client) *Engine {
	byID := make(map[string]directory.Client, len(clients))
	for _, client := range clients {
		byID[client.ID] = client
	}
	return &Engine{employees: employees, clients: byID}
}

// BuildReview aggregates every employee selected anywhere in the snapshot.
// Employees whose total is zero are dropped silently unless a tab flagged a
// warning for them; operators multi-select speculatively and empty entries
// are a no-op, not an error. Output order matches commit numbering order.
func (e *Engine) BuildReview(snap Snapshot) []EmployeeResult {
	var results []EmployeeResult
	for _, employee := range e.sortedEmployees() {
		if !selectedAnywhere(employee.ID, snap) {
			continue
		}
		result := e.ComputeEmployeeTotal(employee, snap)
		if result.Total.IsZero() && len(result.Warnings) == 0 {
			continue
		}
		results = append(results, result)
	}
	return results
}

// ComputeEmployeeTotal sums the employee's contributions across every tab
// they are selected in and every selected relationship within each tab.
func (e *Engine) ComputeEmployeeTotal(employee directory.Employee, snap Snapshot) EmployeeResult {
	result := EmployeeResult{Employee: employee, Total: decimal.Zero}
	for _, tab := range snap.Tabs {
		entry, ok := tab.Entries[employee.ID]
		if !ok || !entry.Selected {
			continue
		}
		breakdown, details, warning := e.computeTab(employee, tab.ClientID, entry)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if breakdown == nil {
			continue
		}
		result.Breakdowns = append(result.Breakdowns, *breakdown)
		result.Details = append(result.Details, details...)
		result.ClientNames = append(result.ClientNames, breakdown.ClientName)
		result.Total = result.Total.Add(breakdown.Total)
	}
	return result
}

func (e *Engine) computeTab(employee directory.Employee, clientID string, entry Entry) (*ClientBreakdown, []RelationshipDetail, string) {
	clientName := clientID
	if client, ok := e.clients[clientID]; ok {
		clientName = client.Name
	}

	if directory.UsesLegacyPay(employee) {
		detail := computeRelationship("", clientID, employee.PayType, employee.PayRate, entry.Legacy)
		breakdown := breakdownFrom(clientID, clientName, []RelationshipDetail{detail})
		return &breakdown, []RelationshipDetail{detail}, ""
	}

	rels := directory.ResolveForTab(employee, clientID)
	if len(rels) == 0 {
		return nil, nil, WarningMissingRelationship + ":" + clientID
	}

	selected := map[string]bool{}
	for _, id := range entry.SelectedRels {
		selected[id] = true
	}

	var details []RelationshipDetail
	for _, rel := range rels {
		if len(entry.SelectedRels) > 0 && !selected[rel.ID] {
			continue
		}
		details = append(details, computeRelationship(rel.ID, clientID, rel.PayType, rel.PayRate, entry.Inputs[rel.ID]))
	}
	if len(details) == 0 {
		return nil, nil, ""
	}

	breakdown := breakdownFrom(clientID, clientName, details)
	return &breakdown, details, ""
}

// computeRelationship applies the pay formula for one relationship. The
// rate is always the relationship's own; there is no inherited global rate.
func computeRelationship(relID, clientID, payType string, rate decimal.Decimal, input PayInput) RelationshipDetail {
	if payType == "" {
		payType = directory.PayTypeHourly
	}
	detail := RelationshipDetail{
		RelationshipID: relID,
		ClientID:       clientID,
		PayType:        payType,
		Rate:           rate,
	}

	amount := decimal.Zero
	switch payType {
	case directory.PayTypePerDiem:
		base := input.PerDiemAmount
		if input.PerDiemBreakdown {
			// Breakdown mode ignores the flat amount entirely.
			base = decimal.Zero
			for _, day := range perDiemDayOrder {
				base = base.Add(input.PerDiemDays[day])
			}
		}
		detail.PerDiem = base
		detail.PTO = input.PTOAmount
		// PTO applies even when the per-diem figure is zero, so a
		// PTO-only disbursement still produces a check.
		amount = base.Add(input.PTOAmount)
	default:
		detail.Hours = input.Hours
		detail.OTHours = input.OTHours
		detail.HolidayHours = input.HolidayHours
		amount = input.Hours.Mul(rate).
			Add(input.OTHours.Mul(rate).Mul(overtimeMultiplier)).
			Add(input.HolidayHours.Mul(rate))
	}

	for _, item := range input.OtherPay {
		detail.OtherPay = append(detail.OtherPay, item)
		amount = amount.Add(item.Amount)
	}

	detail.Amount = amount
	return detail
}

func breakdownFrom(clientID, clientName string, details []RelationshipDetail) ClientBreakdown {
	breakdown := ClientBreakdown{
		ClientID:      clientID,
		ClientName:    clientName,
		HourlyAmount:  decimal.Zero,
		PerDiemAmount: decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, detail := range details {
		if breakdown.PayType == "" {
			breakdown.PayType = detail.PayType
		} else if breakdown.PayType != detail.PayType {
			breakdown.PayType = PayTypeMixed
		}
		if detail.PayType == directory.PayTypePerDiem {
			breakdown.PerDiemAmount = breakdown.PerDiemAmount.Add(detail.PerDiem).Add(detail.PTO)
		} else {
			breakdown.HourlyAmount = breakdown.HourlyAmount.Add(detail.Amount.Sub(sumOtherPay(detail.OtherPay)))
		}
		for _, item := range detail.OtherPay {
			breakdown.Lines = append(breakdown.Lines, LineItem{Description: item.Description, Amount: item.Amount})
		}
		breakdown.Total = breakdown.Total.Add(detail.Amount)
	}
	return breakdown
}

func sumOtherPay(items []OtherPayItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

func selectedAnywhere(employeeID string, snap Snapshot) bool {
	for _, tab := range snap.Tabs {
		if entry, ok := tab.Entries[employeeID]; ok && entry.Selected {
			return true
		}
	}
	return false
}

// sortedEmployees orders by the first token of the display name, ascending
// and case-insensitive. Commit numbers checks in this order, so it must not
// depend on selection order or tab layout.
func (e *Engine) sortedEmployees() []directory.Employee {
	sorted := make([]directory.Employee, len(e.employees))
	copy(sorted, e.employees)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := nameSortKey(sorted[i].Name), nameSortKey(sorted[j].Name)
		if ki != kj {
			return ki < kj
		}
		ni, nj := strings.ToLower(sorted[i].Name), strings.ToLower(sorted[j].Name)
		if ni != nj {
			return ni < nj
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func nameSortKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
