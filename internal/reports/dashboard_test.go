package reports

import (
	"testing"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildDashboard_FixedRanges(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	transactions := []models.Transaction{
		reportTransaction("TUITION", "A", "ENG", 1000, models.TransactionTypeDebit, models.PaymentModeCash,
			now.Add(-2*time.Hour)), // today
		reportTransaction("HOSTEL", "A", "ENG", 500, models.TransactionTypeDebit, models.PaymentModeBank,
			time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)), // this month, not today
		reportTransaction("BUS", "B", "PHARM", 200, models.TransactionTypeDebit, models.PaymentModeCash,
			time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)), // earlier
	}

	summary, err := BuildDashboard(transactions, nil, now, utcConfig(), 10, 5)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}

	if !summary.Today.Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected today total 1000, got %s", summary.Today.Total)
	}
	if !summary.MonthToDate.Total.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected month-to-date total 1500, got %s", summary.MonthToDate.Total)
	}
	if !summary.AllTime.Total.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("Expected all-time total 1700, got %s", summary.AllTime.Total)
	}
	if summary.AllTime.Count != 3 {
		t.Errorf("Expected all-time count 3, got %d", summary.AllTime.Count)
	}
}

func TestBuildDashboard_AllTimeIgnoresRangeGuard(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	config := &Config{MaxRangeDays: 30, Location: time.UTC}
	transactions := []models.Transaction{
		reportTransaction("TUITION", "A", "ENG", 1000, models.TransactionTypeDebit, models.PaymentModeCash,
			time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)),
	}

	summary, err := BuildDashboard(transactions, nil, now, config, 10, 5)
	if err != nil {
		t.Fatalf("Expected dashboard to bypass the guard for fixed windows: %v", err)
	}
	if !summary.AllTime.Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected all-time total 1000, got %s", summary.AllTime.Total)
	}
}

func TestBuildDashboard_RecentBoundedAndOrdered(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	var transactions []models.Transaction
	for i := 0; i < 5; i++ {
		transactions = append(transactions,
			reportTransaction("TUITION", "A", "ENG", 100, models.TransactionTypeDebit, models.PaymentModeCash,
				now.Add(-time.Duration(i)*time.Hour)))
	}

	summary, err := BuildDashboard(transactions, nil, now, utcConfig(), 3, 5)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}

	if len(summary.Recent) != 3 {
		t.Fatalf("Expected recent list bounded at 3, got %d", len(summary.Recent))
	}
	for i := 1; i < len(summary.Recent); i++ {
		if summary.Recent[i].CollectedAt.After(summary.Recent[i-1].CollectedAt) {
			t.Errorf("Recent list out of order at %d", i)
		}
	}
}

func TestBuildDashboard_TopGroupings(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	transactions := []models.Transaction{
		reportTransaction("TUITION", "A", "ENG", 1000, models.TransactionTypeDebit, models.PaymentModeCash, now),
		reportTransaction("TUITION", "A", "ENG", 500, models.TransactionTypeDebit, models.PaymentModeCash, now),
		reportTransaction("TUITION", "A", "PHARM", 700, models.TransactionTypeDebit, models.PaymentModeCash, now),
	}
	transactions[2].StudentID = "STU002"

	directory := map[string]models.StudentInfo{
		"STU001": {ID: "STU001", Course: "B.Tech"},
		"STU002": {ID: "STU002", Course: "B.Pharm"},
	}

	summary, err := BuildDashboard(transactions, directory, now, utcConfig(), 10, 1)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}

	if len(summary.TopColleges) != 1 {
		t.Fatalf("Expected top colleges bounded at 1, got %d", len(summary.TopColleges))
	}
	if summary.TopColleges[0].Name != "ENG" {
		t.Errorf("Expected ENG on top, got %s", summary.TopColleges[0].Name)
	}
	if !summary.TopColleges[0].Total.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected ENG total 1500, got %s", summary.TopColleges[0].Total)
	}

	if len(summary.TopCourses) != 1 || summary.TopCourses[0].Name != "B.Tech" {
		t.Fatalf("Expected B.Tech as top course, got %+v", summary.TopCourses)
	}
}

func TestBuildDashboard_UnknownStudentCourseSkipped(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	transactions := []models.Transaction{
		reportTransaction("TUITION", "A", "ENG", 1000, models.TransactionTypeDebit, models.PaymentModeCash, now),
	}

	summary, err := BuildDashboard(transactions, map[string]models.StudentInfo{}, now, utcConfig(), 10, 5)
	if err != nil {
		t.Fatalf("BuildDashboard failed: %v", err)
	}
	if len(summary.TopCourses) != 0 {
		t.Errorf("Expected no course attribution for unknown students, got %+v", summary.TopCourses)
	}
}
