package batch

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paybatch/internal/domain/directory"
)

// Store is the Postgres persistence collaborator. Checks are append-only;
// the banks row carries the shared counter.
type Store struct {
	DB        *pgxpool.Pool
	directory *directory.Store
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db, directory: directory.NewStore(db)}
}

func (s *Store) GetEmployees(ctx context.Context, companyID string) ([]directory.Employee, error) {
	return s.directory.GetEmployees(ctx, companyID)
}

func (s *Store) GetClients(ctx context.Context) ([]directory.Client, error) {
	return s.directory.GetClients(ctx)
}

func (s *Store) GetBank(ctx context.Context, companyID string) (*directory.Bank, error) {
	return s.directory.GetBank(ctx, companyID)
}

func (s *Store) WriteCheck(ctx context.Context, check Check) (string, error) {
	detailsJSON, err := json.Marshal(check.Details)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO checks (
      company_id, employee_id, employee_name, is_expense, memo,
      amount, total_hours, total_ot_hours, total_holiday_hours,
      relationship_details, client_id, pay_type,
      check_date, week_key, work_week, check_number,
      reviewed, paid, created_by
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
    RETURNING id
  `,
		check.CompanyID, nullIfEmpty(check.EmployeeID), check.EmployeeName, check.Expense, check.Memo,
		check.Amount.String(), check.TotalHours.String(), check.TotalOTHours.String(), check.TotalHolidayHours.String(),
		detailsJSON, check.ClientID, check.PayType,
		check.Date, check.WeekKey, check.WorkWeek, check.Number,
		check.Reviewed, check.Paid, check.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) SetBankCounter(ctx context.Context, bankID string, next int) error {
	_, err := s.DB.Exec(ctx, "UPDATE banks SET next_check_number = $1 WHERE id = $2", next, bankID)
	return err
}

// ListChecks returns a company's checks for one week key in numbering
// order, for the register report.
func (s *Store) ListChecks(ctx context.Context, companyID, weekKey string) ([]Check, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, COALESCE(employee_id::text, ''), employee_name, is_expense, memo,
           amount::text, total_hours::text, total_ot_hours::text, total_holiday_hours::text,
           relationship_details, client_id, pay_type,
           check_date, week_key, work_week, check_number,
           reviewed, paid, created_by
    FROM checks
    WHERE company_id = $1 AND week_key = $2
    ORDER BY check_number
  `, companyID, weekKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var check Check
		var amount, hours, otHours, holidayHours string
		var detailsJSON []byte
		if err := rows.Scan(
			&check.ID, &check.CompanyID, &check.EmployeeID, &check.EmployeeName, &check.Expense, &check.Memo,
			&amount, &hours, &otHours, &holidayHours,
			&detailsJSON, &check.ClientID, &check.PayType,
			&check.Date, &check.WeekKey, &check.WorkWeek, &check.Number,
			&check.Reviewed, &check.Paid, &check.CreatedBy,
		); err != nil {
			return nil, err
		}
		check.Amount = parseDecimal(amount)
		check.TotalHours = parseDecimal(hours)
		check.TotalOTHours = parseDecimal(otHours)
		check.TotalHolidayHours = parseDecimal(holidayHours)
		if err := json.Unmarshal(detailsJSON, &check.Details); err != nil {
			check.Details = nil
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

func parseDecimal(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
