package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// GetEmployees returns the company's employees with their pay relationships
// attached. Callers treat the result as a session snapshot; live directory
// updates are a front-end concern.
func (s *Store) GetEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, active,
           COALESCE(pay_type, ''),
           COALESCE(pay_rate::text, '0')
    FROM employees
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	index := map[string]int{}
	for rows.Next() {
		var employee Employee
		var rate string
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Active, &employee.PayType, &rate); err != nil {
			return nil, err
		}
		employee.PayRate, err = decimal.NewFromString(rate)
		if err != nil {
			employee.PayRate = decimal.Zero
		}
		index[employee.ID] = len(employees)
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	relRows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.client_id, r.pay_type, r.pay_rate::text, r.active
    FROM pay_relationships r
    JOIN employees e ON r.employee_id = e.id
    WHERE e.company_id = $1
    ORDER BY r.created_at
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer relRows.Close()

	for relRows.Next() {
		var rel PayRelationship
		var employeeID, rate string
		if err := relRows.Scan(&rel.ID, &employeeID, &rel.ClientID, &rel.PayType, &rate, &rel.Active); err != nil {
			return nil, err
		}
		rel.PayRate, err = decimal.NewFromString(rate)
		if err != nil {
			rel.PayRate = decimal.Zero
		}
		if i, ok := index[employeeID]; ok {
			employees[i].Relationships = append(employees[i].Relationships, rel)
		}
	}
	return employees, relRows.Err()
}

func (s *Store) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, active,
           COALESCE(week_start, 'monday'),
           COALESCE(frequency, 'weekly')
    FROM clients
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var client Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Active, &client.WeekStart, &client.Frequency); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// GetCompanies lists companies visible to the caller. Admin-style roles see
// all companies; everyone else is limited to the ids they were granted.
func (s *Store) GetCompanies(ctx context.Context, role string, companyIDs []string) ([]Company, error) {
	query := "SELECT id, name FROM companies ORDER BY name"
	args := []any{}
	if role != "admin" {
		if len(companyIDs) == 0 {
			return nil, nil
		}
		query = "SELECT id, name FROM companies WHERE id = ANY($1) ORDER BY name"
		args = append(args, companyIDs)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var company Company
		if err := rows.Scan(&company.ID, &company.Name); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// GetCompany returns one company by id, or nil when it does not exist.
func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	var company Company
	err := s.DB.QueryRow(ctx, "SELECT id, name FROM companies WHERE id = $1", id).Scan(&company.ID, &company.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetBank returns the company's bank counter record, or nil when the
// company has no bank configured.
func (s *Store) GetBank(ctx context.Context, companyID string) (*Bank, error) {
	var bank Bank
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, next_check_number
    FROM banks
    WHERE company_id = $1
  `, companyID).Scan(&bank.ID, &bank.CompanyID, &bank.NextCheckNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bank, nil
}
