package batch

import (
	"context"

	"paybatch/internal/domain/directory"
)

// StoreAPI is the persistence contract the committer needs: read-only
// directory snapshots, the bank counter, and an append-only check sink.
// The counter update is called exactly once per successful commit.
type StoreAPI interface {
	GetEmployees(ctx context.Context, companyID string) ([]directory.Employee, error)
	GetClients(ctx context.Context) ([]directory.Client, error)
	GetBank(ctx context.Context, companyID string) (*directory.Bank, error)
	WriteCheck(ctx context.Context, check Check) (string, error)
	SetBankCounter(ctx context.Context, bankID string, next int) error
}
