package batch

import (
	"github.com/shopspring/decimal"

	"paybatch/internal/domain/directory"
)

// PayInput carries the pay facts entered for one relationship in one tab.
// Hourly relationships read the hours fields; per-diem relationships read
// either the flat amount or, when PerDiemBreakdown is set, the per-day map.
// PTO is a flat dollar figure, never hours times rate.
type PayInput struct {
	Hours            decimal.Decimal            `json:"hours"`
	OTHours          decimal.Decimal            `json:"otHours"`
	HolidayHours     decimal.Decimal            `json:"holidayHours"`
	PerDiemAmount    decimal.Decimal            `json:"perdiemAmount"`
	PerDiemBreakdown bool                       `json:"perdiemBreakdown"`
	PerDiemDays      map[string]decimal.Decimal `json:"perdiemDays,omitempty"`
	PTOAmount        decimal.Decimal            `json:"ptoAmount"`
	OtherPay         []OtherPayItem             `json:"otherPay,omitempty"`
}

type OtherPayItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Entry is one employee's state inside one client tab. SelectedRels limits
// which relationships count toward totals; empty means every active
// relationship for the tab's client. Legacy holds the inputs for employees
// with no relationships.
type Entry struct {
	Selected     bool                `json:"selected"`
	CheckDate    string              `json:"checkDate,omitempty"`
	SelectedRels []string            `json:"selectedRels,omitempty"`
	Inputs       map[string]PayInput `json:"inputs,omitempty"`
	Legacy       PayInput            `json:"legacy"`
}

// Tab groups entries under one client. Tab order in the snapshot is the
// operator's layout order and defines encounter order for tie-breaks.
type Tab struct {
	ClientID string           `json:"clientId"`
	Entries  map[string]Entry `json:"entries"`
}

type ExpenseEntry struct {
	Payee       string          `json:"payee"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CheckDate   string          `json:"checkDate,omitempty"`
}

// Snapshot is the immutable tab-data structure the editing surface hands to
// BuildReview and Commit. Both functions are pure over it; the front end
// owns producing a fresh snapshot after every edit.
type Snapshot struct {
	Tabs     []Tab          `json:"tabs"`
	Expenses []ExpenseEntry `json:"expenses,omitempty"`
}

type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ClientBreakdown is one client's share of a consolidated check.
type ClientBreakdown struct {
	ClientID      string          `json:"clientId"`
	ClientName    string          `json:"clientName"`
	PayType       string          `json:"payType"`
	HourlyAmount  decimal.Decimal `json:"hourlyAmount"`
	PerDiemAmount decimal.Decimal `json:"perdiemAmount"`
	Lines         []LineItem      `json:"lines,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

// RelationshipDetail is the authoritative per-relationship figure set; the
// check-level hour totals are display aggregates derived from these.
type RelationshipDetail struct {
	RelationshipID string          `json:"relationshipId,omitempty"`
	ClientID       string          `json:"clientId"`
	PayType        string          `json:"payType"`
	Rate           decimal.Decimal `json:"rate"`
	Hours          decimal.Decimal `json:"hours"`
	OTHours        decimal.Decimal `json:"otHours"`
	HolidayHours   decimal.Decimal `json:"holidayHours"`
	PerDiem        decimal.Decimal `json:"perdiem"`
	PTO            decimal.Decimal `json:"pto"`
	OtherPay       []OtherPayItem  `json:"otherPay,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
}

// EmployeeResult is one employee's consolidated figure across every tab
// they are selected in. Derived, never stored.
type EmployeeResult struct {
	Employee    directory.Employee   `json:"employee"`
	Total       decimal.Decimal      `json:"total"`
	Breakdowns  []ClientBreakdown    `json:"breakdowns,omitempty"`
	ClientNames []string             `json:"clientNames,omitempty"`
	Details     []RelationshipDetail `json:"relationshipDetails,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// Check is immutable once persisted; it is never renumbered.
type Check struct {
	ID                string               `json:"id,omitempty"`
	CompanyID         string               `json:"companyId"`
	EmployeeID        string               `json:"employeeId,omitempty"`
	EmployeeName      string               `json:"employeeName,omitempty"`
	Expense           bool                 `json:"expense,omitempty"`
	Memo              string               `json:"memo,omitempty"`
	Amount            decimal.Decimal      `json:"amount"`
	TotalHours        decimal.Decimal      `json:"totalHours"`
	TotalOTHours      decimal.Decimal      `json:"totalOtHours"`
	TotalHolidayHours decimal.Decimal      `json:"totalHolidayHours"`
	Details           []RelationshipDetail `json:"relationshipDetails,omitempty"`
	ClientID          string               `json:"clientId,omitempty"`
	PayType           string               `json:"payType"`
	Date              string               `json:"date"`
	WeekKey           string               `json:"weekKey"`
	WorkWeek          string               `json:"workWeek"`
	Number            int                  `json:"checkNumber"`
	Reviewed          bool                 `json:"reviewed"`
	Paid              bool                 `json:"paid"`
	CreatedBy         string               `json:"createdBy,omitempty"`
}
