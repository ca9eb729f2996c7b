// Package ledger reconciles demand records against collection transactions
// to produce a per-student, per-fee-head financial position.
//
// The two record sets are independently keyed and are not guaranteed to line
// up 1:1: a demand may be partially paid, overpaid, unpaid, or settled across
// several transactions, and a transaction may arrive with no standing demand
// at all (an ad hoc fee). Reconciliation therefore emits one line for every
// key in the union of the two keyspaces and never drops either side.
package ledger

import (
	"sort"
	"strings"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/shopspring/decimal"
)

// Scope narrows a reconciliation call. StudentID is required; the remaining
// fields are optional filters. A nil Semester means no semester filter, which
// is distinct from filtering on the yearly bucket.
type Scope struct {
	StudentID   string
	FeeHeadID   string
	StudentYear int
	Semester    *models.SemesterTerm
}

// Validate checks that the scope is structurally usable
func (s Scope) Validate() error {
	if strings.TrimSpace(s.StudentID) == "" {
		return errors.InvalidScope("studentId", s.StudentID)
	}
	if s.Semester != nil && !s.Semester.IsValid() {
		return errors.InvalidScope("semester", *s.Semester)
	}
	return nil
}

// matchesDemand reports whether a demand falls inside the scope
func (s Scope) matchesDemand(d *models.Demand) bool {
	return d.StudentID == s.StudentID && s.matchesKey(d.Key())
}

// matchesTransaction reports whether a transaction falls inside the scope
func (s Scope) matchesTransaction(t *models.Transaction) bool {
	return t.StudentID == s.StudentID && s.matchesKey(t.Key())
}

func (s Scope) matchesKey(k models.FeeKey) bool {
	if s.FeeHeadID != "" && k.FeeHeadID != s.FeeHeadID {
		return false
	}
	if s.StudentYear != 0 && k.StudentYear != s.StudentYear {
		return false
	}
	if s.Semester != nil && k.Semester != *s.Semester {
		return false
	}
	return true
}

// LedgerLine is the reconciled position for one fee key. Paid and Due are
// floored at zero for display; NetPaid keeps the unclamped signed total
// (DEBIT minus CREDIT) for reconciliation diagnostics, including the
// over-credit case where it goes negative.
type LedgerLine struct {
	Key         models.FeeKey   `json:"key"`
	FeeHeadName string          `json:"feeHeadName,omitempty"`
	Demand      decimal.Decimal `json:"demand"`
	Paid        decimal.Decimal `json:"paid"`
	NetPaid     decimal.Decimal `json:"netPaid"`
	Due         decimal.Decimal `json:"due"`
	Overpaid    bool            `json:"overpaid"`
	CashPaid    decimal.Decimal `json:"cashPaid"`
	BankPaid    decimal.Decimal `json:"bankPaid"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
}

// accumulator gathers the per-key folding state before lines are emitted
type accumulator struct {
	demand decimal.Decimal
	net    decimal.Decimal
	cash   decimal.Decimal
	bank   decimal.Decimal
	credit decimal.Decimal
}

// Reconcile merges demand and transaction collections into ledger lines for
// the scoped student.
//
// The fold is side-effect free and runs in three passes: index demands by
// FeeKey, accumulate signed transaction totals into the same keyspace, then
// emit one line per key in the union of both key sets. Semester matching is
// exact: a yearly transaction only settles a yearly demand and a concrete
// semester only settles the same semester.
//
// Over- and under-payment are valid business states reported through Due and
// Overpaid, never errors. The only failure mode is a structurally invalid
// scope.
func Reconcile(demands []models.Demand, transactions []models.Transaction, scope Scope) ([]LedgerLine, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("ledger")

	acc := make(map[models.FeeKey]*accumulator)

	get := func(key models.FeeKey) *accumulator {
		a, ok := acc[key]
		if !ok {
			a = &accumulator{
				demand: decimal.Zero,
				net:    decimal.Zero,
				cash:   decimal.Zero,
				bank:   decimal.Zero,
				credit: decimal.Zero,
			}
			acc[key] = a
		}
		return a
	}

	// Pass 1: index demands. Duplicate keys are summed; the normalizer merges
	// them upstream but direct callers may pass unmerged slices.
	for i := range demands {
		d := &demands[i]
		if !scope.matchesDemand(d) {
			continue
		}
		a := get(d.Key())
		a.demand = a.demand.Add(d.Amount)
	}

	// Pass 2: fold transactions into the same keyspace
	for i := range transactions {
		t := &transactions[i]
		if !scope.matchesTransaction(t) {
			continue
		}
		a := get(t.Key())
		a.net = a.net.Add(t.SignedAmount())
		switch {
		case t.IsCredit():
			a.credit = a.credit.Add(t.Amount)
		case t.Mode == models.PaymentModeBank:
			a.bank = a.bank.Add(t.Amount)
		default:
			a.cash = a.cash.Add(t.Amount)
		}
	}

	// Pass 3: emit the union in stable key order
	keys := make([]models.FeeKey, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	lines := make([]LedgerLine, 0, len(keys))
	for _, key := range keys {
		a := acc[key]

		due := a.demand.Sub(a.net)
		if due.IsNegative() {
			due = decimal.Zero
		}

		paid := a.net
		if paid.IsNegative() {
			paid = decimal.Zero
		}

		lines = append(lines, LedgerLine{
			Key:         key,
			Demand:      a.demand,
			Paid:        paid,
			NetPaid:     a.net,
			Due:         due,
			Overpaid:    a.net.GreaterThan(a.demand),
			CashPaid:    a.cash,
			BankPaid:    a.bank,
			CreditTotal: a.credit,
		})
	}

	log.WithFields(logger.Fields{
		"student": scope.StudentID,
		"lines":   len(lines),
	}).Debug("Reconciled student ledger")

	return lines, nil
}

// Totals sums the given ledger lines into a single summary line. The summary
// key is zero-valued; callers use it for footer rows on receipts.
func Totals(lines []LedgerLine) LedgerLine {
	total := LedgerLine{
		Demand:      decimal.Zero,
		Paid:        decimal.Zero,
		NetPaid:     decimal.Zero,
		Due:         decimal.Zero,
		CashPaid:    decimal.Zero,
		BankPaid:    decimal.Zero,
		CreditTotal: decimal.Zero,
	}
	for _, line := range lines {
		total.Demand = total.Demand.Add(line.Demand)
		total.Paid = total.Paid.Add(line.Paid)
		total.NetPaid = total.NetPaid.Add(line.NetPaid)
		total.Due = total.Due.Add(line.Due)
		total.CashPaid = total.CashPaid.Add(line.CashPaid)
		total.BankPaid = total.BankPaid.Add(line.BankPaid)
		total.CreditTotal = total.CreditTotal.Add(line.CreditTotal)
	}
	total.Overpaid = total.NetPaid.GreaterThan(total.Demand)
	return total
}
