// Package reports aggregates collection transactions into multi-dimensional
// report buckets: by day, by cashier, by fee head, and by payment mode.
//
// Aggregation is a pure fold over an already-fetched transaction slice.
// Every grouping conserves sums: the total across all buckets of a dimension
// equals the signed sum over the filtered transactions, with no row lost or
// double-counted.
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/shopspring/decimal"
)

// GroupBy selects the grouping dimension for a collection report
type GroupBy string

const (
	GroupByDay     GroupBy = "day"
	GroupByCashier GroupBy = "cashier"
	GroupByFeeHead GroupBy = "feeHead"
	GroupByMode    GroupBy = "mode"
)

// IsValid checks if the grouping dimension is supported
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByDay, GroupByCashier, GroupByFeeHead, GroupByMode:
		return true
	default:
		return false
	}
}

// ParseGroupBy parses a grouping dimension from string
func ParseGroupBy(s string) (GroupBy, error) {
	switch s {
	case "day", "daily":
		return GroupByDay, nil
	case "cashier":
		return GroupByCashier, nil
	case "feeHead", "fee-head", "feehead":
		return GroupByFeeHead, nil
	case "mode":
		return GroupByMode, nil
	default:
		return "", fmt.Errorf("invalid group-by dimension '%s': must be day, cashier, feeHead or mode", s)
	}
}

// Range is an inclusive date range over transaction collection dates
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks the range is structurally usable
func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.InvalidRange("start and end are both required")
	}
	if r.Start.After(r.End) {
		return errors.InvalidRange(fmt.Sprintf("start %s is after end %s",
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")))
	}
	return nil
}

// Days returns the number of calendar days the range spans, inclusive
func (r Range) Days() int {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// Config holds aggregation limits and the institution-local calendar
type Config struct {
	// MaxRangeDays caps the requested span; zero disables the guard
	MaxRangeDays int
	// Location defines calendar day boundaries for day grouping
	Location *time.Location
}

// DefaultConfig returns the default aggregation configuration
func DefaultConfig() *Config {
	return &Config{
		MaxRangeDays: 366,
		Location:     time.Local,
	}
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CollegeAmount is the innermost breakdown level: collections attributed to
// one college within a fee head
type CollegeAmount struct {
	College string          `json:"college"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Total   decimal.Decimal `json:"total"`
}

// FeeHeadBreakdown is a per-fee-head slice of a bucket, itself broken down
// by college to support the cashier summary report
type FeeHeadBreakdown struct {
	FeeHeadID string          `json:"feeHeadId"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Total     decimal.Decimal `json:"total"`
	Colleges  []CollegeAmount `json:"colleges,omitempty"`
}

// ReportBucket is an aggregated collection total for one grouping key.
// Cash and Bank sum DEBIT rows only; Credit is the concession magnitude;
// Total is Debit minus Credit. Count includes both DEBIT and CREDIT rows.
type ReportBucket struct {
	Key      string             `json:"key"`
	Count    int                `json:"count"`
	Cash     decimal.Decimal    `json:"cash"`
	Bank     decimal.Decimal    `json:"bank"`
	Debit    decimal.Decimal    `json:"debit"`
	Credit   decimal.Decimal    `json:"credit"`
	Total    decimal.Decimal    `json:"total"`
	FeeHeads []FeeHeadBreakdown `json:"feeHeads,omitempty"`
	Colleges []CollegeAmount    `json:"colleges,omitempty"`
}

// bucketAccumulator carries the nested fold state for one bucket
type bucketAccumulator struct {
	bucket   *ReportBucket
	feeHeads map[string]*feeHeadAccumulator
	colleges map[string]*CollegeAmount
}

type feeHeadAccumulator struct {
	breakdown *FeeHeadBreakdown
	colleges  map[string]*CollegeAmount
}

// Aggregate folds the transactions falling inside the range into one bucket
// per grouping key.
//
// The range is inclusive on the transaction's collection date, evaluated at
// calendar day boundaries in the configured location. Day buckets are emitted
// chronologically; other dimensions are sorted by Total descending with the
// key as tie-break, which is a presentation choice rather than a contract.
func Aggregate(transactions []models.Transaction, r Range, groupBy GroupBy, config *Config) ([]ReportBucket, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !groupBy.IsValid() {
		return nil, errors.ValidationError(errors.CodeInvalidData, "groupBy", string(groupBy), nil)
	}
	if config.MaxRangeDays > 0 && r.Days() > config.MaxRangeDays {
		return nil, errors.RangeTooLarge(r.Days(), config.MaxRangeDays)
	}

	loc := config.Location
	if loc == nil {
		loc = time.Local
	}

	rangeStart := startOfDay(r.Start, loc)
	rangeEnd := startOfDay(r.End, loc).AddDate(0, 0, 1)

	buckets := make(map[string]*bucketAccumulator)

	for i := range transactions {
		t := &transactions[i]

		at := t.CollectedAt.In(loc)
		if at.Before(rangeStart) || !at.Before(rangeEnd) {
			continue
		}

		key := groupKey(t, groupBy, loc)
		acc, ok := buckets[key]
		if !ok {
			acc = newBucketAccumulator(key)
			buckets[key] = acc
		}
		acc.fold(t, groupBy)
	}

	result := make([]ReportBucket, 0, len(buckets))
	for _, acc := range buckets {
		result = append(result, *acc.finalize())
	}

	if groupBy == GroupByDay {
		sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	} else {
		sort.Slice(result, func(i, j int) bool {
			if !result[i].Total.Equal(result[j].Total) {
				return result[i].Total.GreaterThan(result[j].Total)
			}
			return result[i].Key < result[j].Key
		})
	}

	logger.GetGlobalLogger().WithComponent("reports").WithFields(logger.Fields{
		"group_by": string(groupBy),
		"buckets":  len(result),
	}).Debug("Aggregated collection report")

	return result, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func groupKey(t *models.Transaction, groupBy GroupBy, loc *time.Location) string {
	switch groupBy {
	case GroupByDay:
		return t.CollectedAt.In(loc).Format("2006-01-02")
	case GroupByCashier:
		return t.CashierID
	case GroupByFeeHead:
		return t.FeeHeadID
	default:
		return string(t.Mode)
	}
}

func newBucketAccumulator(key string) *bucketAccumulator {
	return &bucketAccumulator{
		bucket: &ReportBucket{
			Key:    key,
			Cash:   decimal.Zero,
			Bank:   decimal.Zero,
			Debit:  decimal.Zero,
			Credit: decimal.Zero,
			Total:  decimal.Zero,
		},
		feeHeads: make(map[string]*feeHeadAccumulator),
		colleges: make(map[string]*CollegeAmount),
	}
}

func (acc *bucketAccumulator) fold(t *models.Transaction, groupBy GroupBy) {
	b := acc.bucket
	b.Count++

	if t.IsCredit() {
		b.Credit = b.Credit.Add(t.Amount)
	} else {
		b.Debit = b.Debit.Add(t.Amount)
		if t.Mode == models.PaymentModeBank {
			b.Bank = b.Bank.Add(t.Amount)
		} else {
			b.Cash = b.Cash.Add(t.Amount)
		}
	}

	switch groupBy {
	case GroupByCashier:
		acc.foldFeeHead(t)
	case GroupByFeeHead:
		foldCollege(acc.colleges, t)
	}
}

func (acc *bucketAccumulator) foldFeeHead(t *models.Transaction) {
	fh, ok := acc.feeHeads[t.FeeHeadID]
	if !ok {
		fh = &feeHeadAccumulator{
			breakdown: &FeeHeadBreakdown{
				FeeHeadID: t.FeeHeadID,
				Debit:     decimal.Zero,
				Credit:    decimal.Zero,
				Total:     decimal.Zero,
			},
			colleges: make(map[string]*CollegeAmount),
		}
		acc.feeHeads[t.FeeHeadID] = fh
	}

	if t.IsCredit() {
		fh.breakdown.Credit = fh.breakdown.Credit.Add(t.Amount)
	} else {
		fh.breakdown.Debit = fh.breakdown.Debit.Add(t.Amount)
	}

	foldCollege(fh.colleges, t)
}

func foldCollege(colleges map[string]*CollegeAmount, t *models.Transaction) {
	c, ok := colleges[t.College]
	if !ok {
		c = &CollegeAmount{
			College: t.College,
			Debit:   decimal.Zero,
			Credit:  decimal.Zero,
			Total:   decimal.Zero,
		}
		colleges[t.College] = c
	}
	if t.IsCredit() {
		c.Credit = c.Credit.Add(t.Amount)
	} else {
		c.Debit = c.Debit.Add(t.Amount)
	}
}

func (acc *bucketAccumulator) finalize() *ReportBucket {
	b := acc.bucket
	b.Total = b.Debit.Sub(b.Credit)

	if len(acc.feeHeads) > 0 {
		b.FeeHeads = make([]FeeHeadBreakdown, 0, len(acc.feeHeads))
		for _, fh := range acc.feeHeads {
			fh.breakdown.Total = fh.breakdown.Debit.Sub(fh.breakdown.Credit)
			fh.breakdown.Colleges = flattenColleges(fh.colleges)
			b.FeeHeads = append(b.FeeHeads, *fh.breakdown)
		}
		sort.Slice(b.FeeHeads, func(i, j int) bool {
			return b.FeeHeads[i].FeeHeadID < b.FeeHeads[j].FeeHeadID
		})
	}

	if len(acc.colleges) > 0 {
		b.Colleges = flattenColleges(acc.colleges)
	}

	return b
}

func flattenColleges(colleges map[string]*CollegeAmount) []CollegeAmount {
	result := make([]CollegeAmount, 0, len(colleges))
	for _, c := range colleges {
		c.Total = c.Debit.Sub(c.Credit)
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].College < result[j].College })
	return result
}

// GrandTotal sums a bucket slice into a single summary bucket. Used for
// report footers and for checking sum conservation in diagnostics.
func GrandTotal(buckets []ReportBucket) ReportBucket {
	total := ReportBucket{
		Key:    "total",
		Cash:   decimal.Zero,
		Bank:   decimal.Zero,
		Debit:  decimal.Zero,
		Credit: decimal.Zero,
		Total:  decimal.Zero,
	}
	for _, b := range buckets {
		total.Count += b.Count
		total.Cash = total.Cash.Add(b.Cash)
		total.Bank = total.Bank.Add(b.Bank)
		total.Debit = total.Debit.Add(b.Debit)
		total.Credit = total.Credit.Add(b.Credit)
		total.Total = total.Total.Add(b.Total)
	}
	return total
}
