package batch

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"paybatch/internal/domain/directory"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testClients() []directory.Client {
	return []directory.Client{
		{ID: "client-a", Name: "Acme", Active: true, WeekStart: directory.WeekStartMonday, Frequency: "weekly"},
		{ID: "client-b", Name: "Beta", Active: true, WeekStart: directory.WeekStartSunday, Frequency: "weekly"},
	}
}

func TestComputeHourlyRelationship(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypeHourly, PayRate: dec("17.00"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{{
		ClientID: "client-a",
		Entries: map[string]Entry{
			"emp-1": {Selected: true, Inputs: map[string]PayInput{
				"rel-1": {Hours: dec("40"), OTHours: dec("5"), HolidayHours: dec("8")},
			}},
		},
	}}}

	result := engine.ComputeEmployeeTotal(employee, snap)
	// 40*17 + 5*17*1.5 + 8*17 = 943.50
	if !result.Total.Equal(dec("943.50")) {
		t.Fatalf("expected 943.50, got %s", result.Total)
	}
	if len(result.Details) != 1 || !result.Details[0].Rate.Equal(dec("17.00")) {
		t.Fatalf("unexpected details: %+v", result.Details)
	}
}

func TestComputePerDiemBreakdownIgnoresFlatAmount(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypePerDiem, PayRate: dec("0"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{{
		ClientID: "client-a",
		Entries: map[string]Entry{
			"emp-1": {Selected: true, Inputs: map[string]PayInput{
				"rel-1": {
					PerDiemAmount:    dec("999"),
					PerDiemBreakdown: true,
					PerDiemDays:      map[string]decimal.Decimal{"mon": dec("50"), "wed": dec("60")},
					PTOAmount:        dec("25"),
				},
			}},
		},
	}}}

	result := engine.ComputeEmployeeTotal(employee, snap)
	if !result.Total.Equal(dec("135")) {
		t.Fatalf("expected 135, got %s", result.Total)
	}
}

func TestPTOOnlyDisbursement(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypePerDiem, PayRate: dec("0"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{{
		ClientID: "client-a",
		Entries: map[string]Entry{
			"emp-1": {Selected: true, Inputs: map[string]PayInput{
				"rel-1": {PTOAmount: dec("75")},
			}},
		},
	}}}

	results := engine.BuildReview(snap)
	if len(results) != 1 || !results[0].Total.Equal(dec("75")) {
		t.Fatalf("expected a 75.00 PTO-only result, got %+v", results)
	}
}

func TestLegacyEmployeeUsesSingleRate(t *testing.T) {
	employee := directory.Employee{ID: "emp-2", Name: "Bob Lee", Active: true, PayType: directory.PayTypeHourly, PayRate: dec("15")}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{{
		ClientID: "client-a",
		Entries: map[string]Entry{
			"emp-2": {Selected: true, Legacy: PayInput{Hours: dec("10"), OtherPay: []OtherPayItem{{Description: "bonus", Amount: dec("20")}}}},
		},
	}}}

	result := engine.ComputeEmployeeTotal(employee, snap)
	if !result.Total.Equal(dec("170")) {
		t.Fatalf("expected 170, got %s", result.Total)
	}
}

func TestZeroTotalEmployeeDropped(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypeHourly, PayRate: dec("17.00"), Active: true},
			{ID: "rel-2", ClientID: "client-b", PayType: directory.PayTypeHourly, PayRate: dec("18.00"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	// Selected in two tabs, nothing entered in either: a no-op, not an error.
	snap := Snapshot{Tabs: []Tab{
		{ClientID: "client-a", Entries: map[string]Entry{"emp-1": {Selected: true}}},
		{ClientID: "client-b", Entries: map[string]Entry{"emp-1": {Selected: true}}},
	}}

	if results := engine.BuildReview(snap); len(results) != 0 {
		t.Fatalf("expected empty review, got %+v", results)
	}
}

func TestMissingRelationshipFlagged(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypeHourly, PayRate: dec("17.00"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{
		{ClientID: "client-b", Entries: map[string]Entry{"emp-1": {Selected: true}}},
	}}

	results := engine.BuildReview(snap)
	if len(results) != 1 {
		t.Fatalf("expected flagged result, got %+v", results)
	}
	if len(results[0].Warnings) != 1 || results[0].Warnings[0] != "missing_relationship:client-b" {
		t.Fatalf("unexpected warnings: %v", results[0].Warnings)
	}
	if !results[0].Total.IsZero() {
		t.Fatalf("missing relationship must contribute zero, got %s", results[0].Total)
	}
}

func TestMultiClientConsolidation(t *testing.T) {
	employee := directory.Employee{
		ID: "emp-1", Name: "Ann Kim", Active: true,
		Relationships: []directory.PayRelationship{
			{ID: "rel-1", ClientID: "client-a", PayType: directory.PayTypeHourly, PayRate: dec("10"), Active: true},
			{ID: "rel-2", ClientID: "client-b", PayType: directory.PayTypePerDiem, PayRate: dec("0"), Active: true},
		},
	}
	engine := NewEngine([]directory.Employee{employee}, testClients())

	snap := Snapshot{Tabs: []Tab{
		{ClientID: "client-a", Entries: map[string]Entry{"emp-1": {Selected: true, Inputs: map[string]PayInput{"rel-1": {Hours: dec("5")}}}}},
		{ClientID: "client-b", Entries: map[string]Entry{"emp-1": {Selected: true, Inputs: map[string]PayInput{"rel-2": {PerDiemAmount: dec("80")}}}}},
	}}

	result := engine.ComputeEmployeeTotal(employee, snap)
	if !result.Total.Equal(dec("130")) {
		t.Fatalf("expected 130, got %s", result.Total)
	}
	if len(result.Breakdowns) != 2 {
		t.Fatalf("expected two client breakdowns, got %+v", result.Breakdowns)
	}
	if result.Breakdowns[0].ClientName != "Acme" || result.Breakdowns[1].ClientName != "Beta" {
		t.Fatalf("unexpected client names: %v", result.ClientNames)
	}
}

func TestBuildReviewDeterministic(t *testing.T) {
	employees := []directory.Employee{
		{ID: "emp-1", Name: "Zed Fox", Active: true, PayType: directory.PayTypeHourly, PayRate: dec("8")},
		{ID: "emp-2", Name: "Ann Kim", Active: true, PayType: directory.PayTypeHourly, PayRate: dec("12")},
	}
	engine := NewEngine(employees, testClients())

	snap := Snapshot{Tabs: []Tab{{
		ClientID: "client-a",
		Entries: map[string]Entry{
			"emp-1": {Selected: true, Legacy: PayInput{Hours: dec("10")}},
			"emp-2": {Selected: true, Legacy: PayInput{Hours: dec("10")}},
		},
	}}}

	first := engine.BuildReview(snap)
	second := engine.BuildReview(snap)

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatal("review output drifted between identical calls")
	}

	// Name-token order, not input order.
	if first[0].Employee.Name != "Ann Kim" || first[1].Employee.Name != "Zed Fox" {
		t.Fatalf("unexpected review order: %s, %s", first[0].Employee.Name, first[1].Employee.Name)
	}
}
