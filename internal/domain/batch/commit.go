package batch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"paybatch/internal/domain/period"
)

type CommitOptions struct {
	// CheckDate is the batch date used for any entry without a manual
	// check date. Zero means the commit time.
	CheckDate time.Time
	CreatedBy string
}

// Committer is the only side-effecting component: it validates the
// aggregate, claims a contiguous check-number range, and hands immutable
// checks to the sink.
type Committer struct {
	store StoreAPI
	locks sync.Map // company id -> *sync.Mutex
}

func NewCommitter(store StoreAPI) *Committer {
	return &Committer{store: store}
}

// BuildReview is the read-only entry point: it aggregates the snapshot
// against a fresh directory read and writes nothing. Safe to call
// concurrently with editing and with itself.
func (c *Committer) BuildReview(ctx context.Context, companyID string, snap Snapshot) ([]EmployeeResult, error) {
	engine, err := c.engine(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return engine.BuildReview(snap), nil
}

// Commit aggregates the snapshot, reserves check numbers against the
// company's bank counter, and persists one check per qualifying employee
// plus one per expense entry. Commits for one company are serialized: the
// counter read and the final counter write must not interleave with
// another commit or two batches would issue overlapping numbers.
func (c *Committer) Commit(ctx context.Context, companyID string, snap Snapshot, opts CommitOptions) ([]Check, error) {
	engine, err := c.engine(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var payable []EmployeeResult
	for _, result := range engine.BuildReview(snap) {
		if result.Total.Sign() != 0 {
			payable = append(payable, result)
		}
	}
	var expenses []ExpenseEntry
	for _, expense := range snap.Expenses {
		if expense.Amount.Sign() != 0 {
			expenses = append(expenses, expense)
		}
	}
	if len(payable) == 0 && len(expenses) == 0 {
		return nil, ErrEmptyBatch
	}

	mu := c.companyLock(companyID)
	mu.Lock()
	defer mu.Unlock()

	bank, err := c.store.GetBank(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	if bank == nil {
		return nil, ErrNoBankConfigured
	}
	start := bank.NextCheckNumber
	if start < CheckNumberFloor {
		start = CheckNumberFloor
	}

	batchDate := opts.CheckDate
	if batchDate.IsZero() {
		batchDate = time.Now().UTC()
	}

	var checks []Check
	for _, result := range payable {
		checks = append(checks, c.buildCheck(engine, companyID, result, snap, start+len(checks), batchDate, opts.CreatedBy))
	}
	for _, expense := range expenses {
		checks = append(checks, buildExpenseCheck(companyID, expense, start+len(checks), batchDate, opts.CreatedBy))
	}

	for i := range checks {
		id, err := c.store.WriteCheck(ctx, checks[i])
		if err != nil {
			if i > 0 {
				// The counter stays put so the unissued numbers in the
				// reserved range are not lost.
				return checks[:i], &PartialWriteError{Written: i, Err: err}
			}
			return nil, fmt.Errorf("write check %d: %w", checks[i].Number, err)
		}
		checks[i].ID = id
	}

	if err := c.store.SetBankCounter(ctx, bank.ID, start+len(checks)); err != nil {
		// Every check is on disk but the counter still points at the old
		// range, so a blind retry would try to reissue the same numbers.
		return checks, &PartialWriteError{Written: len(checks), Err: err}
	}
	return checks, nil
}

func (c *Committer) engine(ctx context.Context, companyID string) (*Engine, error) {
	employees, err := c.store.GetEmployees(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("read employees: %w", err)
	}
	clients, err := c.store.GetClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}
	return NewEngine(employees, clients), nil
}

func (c *Committer) companyLock(companyID string) *sync.Mutex {
	actual, _ := c.locks.LoadOrStore(companyID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func (c *Committer) buildCheck(engine *Engine, companyID string, result EmployeeResult, snap Snapshot, number int, batchDate time.Time, createdBy string) Check {
	clientID, payType := derivedClientAndType(result.Details)
	checkDate := employeeCheckDate(result.Employee.ID, snap, batchDate)

	check := Check{
		CompanyID:    companyID,
		EmployeeID:   result.Employee.ID,
		EmployeeName: result.Employee.Name,
		Amount:       result.Total,
		Details:      result.Details,
		ClientID:     clientID,
		PayType:      payType,
		Date:         checkDate.Format("2006-01-02"),
		WeekKey:      period.WeekKey(checkDate),
		WorkWeek:     c.workWeekLabel(engine, result, checkDate),
		Number:       number,
		CreatedBy:    createdBy,
	}
	for _, detail := range result.Details {
		check.TotalHours = check.TotalHours.Add(detail.Hours)
		check.TotalOTHours = check.TotalOTHours.Add(detail.OTHours)
		check.TotalHolidayHours = check.TotalHolidayHours.Add(detail.HolidayHours)
	}
	return check
}

func buildExpenseCheck(companyID string, expense ExpenseEntry, number int, batchDate time.Time, createdBy string) Check {
	checkDate := batchDate
	if expense.CheckDate != "" {
		if parsed, err := period.ParseDate(expense.CheckDate); err == nil {
			checkDate = parsed
		}
	}
	return Check{
		CompanyID:    companyID,
		Expense:      true,
		EmployeeName: expense.Payee,
		Memo:         expense.Description,
		Amount:       expense.Amount,
		PayType:      PayTypeExpense,
		Date:         checkDate.Format("2006-01-02"),
		WeekKey:      period.WeekKey(checkDate),
		WorkWeek:     isoWeekLabel(checkDate),
		Number:       number,
		CreatedBy:    createdBy,
	}
}

// workWeekLabel picks the primary client (largest contributing sub-total,
// ties broken by tab encounter order) and renders the week-ending label
// from that client's period configuration. Without a known client the bare
// ISO week number stands in.
func (c *Committer) workWeekLabel(engine *Engine, result EmployeeResult, checkDate time.Time) string {
	primary := -1
	for i, breakdown := range result.Breakdowns {
		if primary == -1 || breakdown.Total.GreaterThan(result.Breakdowns[primary].Total) {
			primary = i
		}
	}
	if primary == -1 {
		return isoWeekLabel(checkDate)
	}
	client, ok := engine.clients[result.Breakdowns[primary].ClientID]
	if !ok {
		return isoWeekLabel(checkDate)
	}
	return period.WorkWeekLabel(checkDate, client.StartDay(), client.PayFrequency())
}

func isoWeekLabel(date time.Time) string {
	_, week := date.ISOWeek()
	return strconv.Itoa(week)
}

// derivedClientAndType collapses the contributing relationships onto the
// check's clientId/payType columns, using the "multiple" and "mixed"
// sentinels when the contributors disagree.
func derivedClientAndType(details []RelationshipDetail) (string, string) {
	clientID, payType := "", ""
	for i, detail := range details {
		if i == 0 {
			clientID, payType = detail.ClientID, detail.PayType
			continue
		}
		if detail.ClientID != clientID {
			clientID = ClientMultiple
		}
		if detail.PayType != payType {
			payType = PayTypeMixed
		}
	}
	return clientID, payType
}

// employeeCheckDate honors a manual check date on any of the employee's
// selected entries; the first one in tab order wins.
func employeeCheckDate(employeeID string, snap Snapshot, batchDate time.Time) time.Time {
	for _, tab := range snap.Tabs {
		entry, ok := tab.Entries[employeeID]
		if !ok || !entry.Selected || entry.CheckDate == "" {
			continue
		}
		if parsed, err := period.ParseDate(entry.CheckDate); err == nil {
			return parsed
		}
	}
	return batchDate
}
