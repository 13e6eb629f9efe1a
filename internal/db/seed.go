package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"paybatch/internal/auth"
	"paybatch/internal/config"
)

// Seed provisions a demo company with a bank counter, two clients with
// differing period configurations, a few employees, and the operator user.
// Every step is idempotent; reruns are no-ops.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	companyID, err := ensureCompany(ctx, pool, cfg.SeedCompanyName)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
    INSERT INTO banks (company_id, next_check_number)
    VALUES ($1, 100)
    ON CONFLICT (company_id) DO NOTHING
  `, companyID); err != nil {
		return err
	}

	clients := []struct {
		name      string
		weekStart string
		frequency string
	}{
		{"Harborview Care", "monday", "weekly"},
		{"Lakeside Manor", "sunday", "biweekly"},
	}
	clientIDs := make([]string, 0, len(clients))
	for _, client := range clients {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM clients WHERE name = $1", client.name).Scan(&id)
		if err != nil {
			err = pool.QueryRow(ctx, `
        INSERT INTO clients (name, active, week_start, frequency)
        VALUES ($1, true, $2, $3)
        RETURNING id
      `, client.name, client.weekStart, client.frequency).Scan(&id)
			if err != nil {
				return err
			}
		}
		clientIDs = append(clientIDs, id)
	}

	if err := seedEmployees(ctx, pool, companyID, clientIDs); err != nil {
		return err
	}

	if cfg.SeedOperatorEmail != "" {
		if err := ensureOperator(ctx, pool, cfg.SeedOperatorEmail, cfg.SeedOperatorPassword, companyID); err != nil {
			return err
		}
	}
	return nil
}

func ensureCompany(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, "INSERT INTO companies (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func seedEmployees(ctx context.Context, pool *pgxpool.Pool, companyID string, clientIDs []string) error {
	type relSeed struct {
		client  int
		payType string
		rate    string
	}
	employees := []struct {
		name    string
		payType string
		rate    string
		rels    []relSeed
	}{
		{name: "Ann Kim", rels: []relSeed{{0, "hourly", "17.00"}, {1, "perdiem", "120.00"}}},
		{name: "Bob Lee", payType: "hourly", rate: "15.00"},
		{name: "Zed Fox", rels: []relSeed{{0, "hourly", "21.50"}}},
	}

	for _, employee := range employees {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE company_id = $1 AND name = $2", companyID, employee.name).Scan(&id)
		if err == nil {
			continue
		}
		err = pool.QueryRow(ctx, `
      INSERT INTO employees (company_id, name, active, pay_type, pay_rate)
      VALUES ($1, $2, true, NULLIF($3, ''), NULLIF($4, '')::numeric)
      RETURNING id
    `, companyID, employee.name, employee.payType, employee.rate).Scan(&id)
		if err != nil {
			return err
		}
		for _, rel := range employee.rels {
			if _, err := pool.Exec(ctx, `
        INSERT INTO pay_relationships (employee_id, client_id, pay_type, pay_rate, active)
        VALUES ($1, $2, $3, $4::numeric, true)
      `, id, clientIDs[rel.client], rel.payType, rel.rate); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureOperator(ctx context.Context, pool *pgxpool.Pool, email, password, companyID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, name, password_hash, role, company_ids)
    VALUES ($1, $2, $3, 'admin', ARRAY[$4]::uuid[])
  `, email, "Operator", hash, companyID)
	return err
}
