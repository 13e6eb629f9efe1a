package directory

import (
	"time"

	"github.com/shopspring/decimal"

	"paybatch/internal/domain/period"
)

const (
	PayTypeHourly  = "hourly"
	PayTypePerDiem = "perdiem"

	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"
)

type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client configures its own pay-period boundaries. Two clients in one batch
// may carry different week-ending labels at the same time.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	WeekStart string `json:"weekStart"` // monday or sunday
	Frequency string `json:"frequency"` // weekly or biweekly
}

// StartDay maps the stored week-start value onto a weekday, defaulting to
// Monday for anything unrecognised.
func (c Client) StartDay() time.Weekday {
	if c.WeekStart == WeekStartSunday {
		return time.Sunday
	}
	return time.Monday
}

// PayFrequency normalises the stored frequency for the period calculator.
func (c Client) PayFrequency() string {
	if c.Frequency == period.FrequencyBiweekly {
		return period.FrequencyBiweekly
	}
	return period.FrequencyWeekly
}

// PayRelationship is one pay arrangement between an employee and a client.
// The rate is scoped to the relationship: the same employee may earn
// different rates at different clients, and overtime is always 1.5x the
// relationship's own rate.
type PayRelationship struct {
	ID       string          `json:"id"`
	ClientID string          `json:"clientId"`
	PayType  string          `json:"payType"`
	PayRate  decimal.Decimal `json:"payRate"`
	Active   bool            `json:"active"`
}

// Employee keeps the legacy single pay type/rate for employees predating
// relationships. An employee with any relationships ignores those fields.
type Employee struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Active        bool              `json:"active"`
	PayType       string            `json:"payType,omitempty"`
	PayRate       decimal.Decimal   `json:"payRate,omitempty"`
	Relationships []PayRelationship `json:"relationships,omitempty"`
}

// Bank owns a company's shared check-number counter.
type Bank struct {
	ID              string `json:"id"`
	CompanyID       string `json:"companyId"`
	NextCheckNumber int    `json:"nextCheckNumber"`
}
