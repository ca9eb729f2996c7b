package reports

import (
	"sort"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// PeriodSummary is the collection position over one fixed range
type PeriodSummary struct {
	Count  int             `json:"count"`
	Cash   decimal.Decimal `json:"cash"`
	Bank   decimal.Decimal `json:"bank"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Total  decimal.Decimal `json:"total"`
}

// GroupTotal is one entry of a top-N grouping on the dashboard
type GroupTotal struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DashboardSummary is the restricted aggregation backing the admin landing
// page: three fixed ranges, the most recent transactions, and top groupings
// by college and course.
type DashboardSummary struct {
	Today       PeriodSummary        `json:"today"`
	MonthToDate PeriodSummary        `json:"monthToDate"`
	AllTime     PeriodSummary        `json:"allTime"`
	Recent      []models.Transaction `json:"recent"`
	TopColleges []GroupTotal         `json:"topColleges"`
	TopCourses  []GroupTotal         `json:"topCourses"`
}

// BuildDashboard computes the dashboard summary from an already-fetched
// transaction slice. The three period summaries are three Aggregate calls
// over different ranges; the recent list and top groupings are bounded scans.
// Course attribution resolves through the student directory and falls back
// to an empty name when a student is unknown.
func BuildDashboard(
	transactions []models.Transaction,
	directory map[string]models.StudentInfo,
	now time.Time,
	config *Config,
	recentN, topN int,
) (*DashboardSummary, error) {
	if config == nil {
		config = DefaultConfig()
	}
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)

	// The all-time range spans the full ledger; the range guard does not
	// apply to the dashboard's fixed windows.
	unguarded := config.Clone()
	unguarded.MaxRangeDays = 0

	earliest := local
	for i := range transactions {
		if transactions[i].CollectedAt.Before(earliest) {
			earliest = transactions[i].CollectedAt
		}
	}

	today := Range{Start: local, End: local}
	monthToDate := Range{
		Start: time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc),
		End:   local,
	}
	allTime := Range{Start: earliest, End: local}

	summary := &DashboardSummary{}

	var err error
	if summary.Today, err = periodSummary(transactions, today, unguarded); err != nil {
		return nil, err
	}
	if summary.MonthToDate, err = periodSummary(transactions, monthToDate, unguarded); err != nil {
		return nil, err
	}
	if summary.AllTime, err = periodSummary(transactions, allTime, unguarded); err != nil {
		return nil, err
	}

	summary.Recent = recentTransactions(transactions, recentN)
	summary.TopColleges = topGroups(transactions, topN, func(t *models.Transaction) string {
		return t.College
	})
	summary.TopCourses = topGroups(transactions, topN, func(t *models.Transaction) string {
		if info, ok := directory[t.StudentID]; ok {
			return info.Course
		}
		return ""
	})

	return summary, nil
}

func periodSummary(transactions []models.Transaction, r Range, config *Config) (PeriodSummary, error) {
	buckets, err := Aggregate(transactions, r, GroupByMode, config)
	if err != nil {
		return PeriodSummary{}, err
	}

	total := GrandTotal(buckets)
	return PeriodSummary{
		Count:  total.Count,
		Cash:   total.Cash,
		Bank:   total.Bank,
		Debit:  total.Debit,
		Credit: total.Credit,
		Total:  total.Total,
	}, nil
}

func recentTransactions(transactions []models.Transaction, n int) []models.Transaction {
	if n <= 0 {
		return nil
	}

	recent := make([]models.Transaction, len(transactions))
	copy(recent, transactions)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CollectedAt.After(recent[j].CollectedAt)
	})

	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

func topGroups(transactions []models.Transaction, n int, keyOf func(*models.Transaction) string) []GroupTotal {
	if n <= 0 {
		return nil
	}

	totals := make(map[string]*GroupTotal)
	for i := range transactions {
		t := &transactions[i]
		name := keyOf(t)
		if name == "" {
			continue
		}
		g, ok := totals[name]
		if !ok {
			g = &GroupTotal{Name: name, Total: decimal.Zero}
			totals[name] = g
		}
		g.Count++
		g.Total = g.Total.Add(t.SignedAmount())
	}

	result := make([]GroupTotal, 0, len(totals))
	for _, g := range totals {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Name < result[j].Name
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}
