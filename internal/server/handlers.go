package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/ledger"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/models"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reporter"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/storage"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// dashboard list bounds, matching the admin landing page layout
const (
	dashboardRecentN = 10
	dashboardTopN    = 5
)

// Handler carries the dependencies shared by all route handlers
type Handler struct {
	store        *storage.Store
	reportConfig *reports.Config
	validate     *validator.Validate
	logger       logger.Logger
}

// NewHandler wires a handler set around the store
func NewHandler(store *storage.Store, reportConfig *reports.Config) *Handler {
	if reportConfig == nil {
		reportConfig = reports.DefaultConfig()
	}
	return &Handler{
		store:        store,
		reportConfig: reportConfig,
		validate:     validator.New(),
		logger:       logger.GetGlobalLogger().WithComponent("api"),
	}
}

// CreateTransaction records one collection-desk transaction.
// POST /api/transactions
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.ValidationError(errors.CodeInvalidFormat, "body", nil, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return errors.ValidationError(errors.CodeMissingField, "body", nil, err).
			WithSuggestion("studentId, feeHeadId, studentYear and amount are required")
	}

	tx, err := req.toModel()
	if err != nil {
		return err
	}

	recorded, err := h.store.RecordTransaction(c.Context(), tx)
	if err != nil {
		return err
	}

	h.logger.WithFields(logger.Fields{
		"transaction_id": recorded.ID,
		"student_id":     recorded.StudentID,
		"type":           recorded.Type,
	}).Info("Transaction recorded")

	return c.Status(fiber.StatusCreated).JSON(recorded)
}

// StudentLedger reconciles one student's position and returns the receipt
// view with the stored mask setting applied.
// GET /api/students/:id/ledger?feeHead=&year=&semester=&unmasked=
func (h *Handler) StudentLedger(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Params("id"))

	scope := ledger.Scope{
		StudentID: studentID,
		FeeHeadID: strings.TrimSpace(c.Query("feeHead")),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return errors.InvalidScope("year", raw)
		}
		scope.StudentYear = year
	}
	if raw := c.Query("semester"); raw != "" {
		term, err := models.ParseSemester(raw)
		if err != nil {
			return errors.InvalidScope("semester", raw)
		}
		scope.Semester = &term
	}
	if err := scope.Validate(); err != nil {
		return err
	}

	demands, err := h.store.ListDemands(c.Context(), studentID)
	if err != nil {
		return err
	}
	transactions, err := h.store.ListTransactions(c.Context(), storage.TransactionFilter{StudentID: studentID})
	if err != nil {
		return err
	}

	lines, err := ledger.Reconcile(demands, transactions, scope)
	if err != nil {
		return err
	}

	setting := receipt.DefaultSetting()
	if !c.QueryBool("unmasked") {
		setting, err = h.store.GetReceiptSetting(c.Context())
		if err != nil {
			return err
		}
	} else {
		setting.MaskedFeeHeadIDs = nil
	}

	// The directory record is optional enrichment; an unknown student still
	// has a valid ledger.
	student, err := h.store.GetStudent(c.Context(), studentID)
	if err != nil {
		if le, ok := errors.AsLedgerError(err); !ok || le.Code != errors.CodeRecordNotFound {
			return err
		}
		student = nil
	}

	return c.JSON(reporter.BuildStudentLedger(lines, setting, student))
}

// CollectionReport aggregates transactions over a date range.
// GET /api/reports/collections?from=&to=&group_by=&cashier=&college=
func (h *Handler) CollectionReport(c *fiber.Ctx) error {
	r, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}

	groupBy := reports.GroupByDay
	if raw := c.Query("group_by"); raw != "" {
		groupBy, err = reports.ParseGroupBy(raw)
		if err != nil {
			return err
		}
	}

	from, to := dayBounds(r, h.reportConfig)
	transactions, err := h.store.ListTransactions(c.Context(), storage.TransactionFilter{
		From:      &from,
		To:        &to,
		CashierID: strings.TrimSpace(c.Query("cashier")),
		College:   strings.TrimSpace(c.Query("college")),
	})
	if err != nil {
		return err
	}

	buckets, err := reports.Aggregate(transactions, r, groupBy, h.reportConfig)
	if err != nil {
		return err
	}

	return c.JSON(reporter.BuildCollectionReport(buckets, groupBy, r))
}

// Dashboard returns the fixed-range landing page summary.
// GET /api/dashboard
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	transactions, err := h.store.ListTransactions(c.Context(), storage.TransactionFilter{})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(transactions))
	seen := make(map[string]struct{}, len(transactions))
	for i := range transactions {
		id := transactions[i].StudentID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	directory, err := h.store.StudentDirectory(c.Context(), ids)
	if err != nil {
		return err
	}

	summary, err := reports.BuildDashboard(transactions, directory, time.Now(), h.reportConfig,
		dashboardRecentN, dashboardTopN)
	if err != nil {
		return err
	}

	return c.JSON(summary)
}

// GetReceiptSetting returns the stored receipt display setting.
// GET /api/settings/receipt
func (h *Handler) GetReceiptSetting(c *fiber.Ctx) error {
	setting, err := h.store.GetReceiptSetting(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(settingResponse(setting))
}

// PutReceiptSetting replaces the receipt display setting.
// PUT /api/settings/receipt
func (h *Handler) PutReceiptSetting(c *fiber.Ctx) error {
	var req ReceiptSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.ValidationError(errors.CodeInvalidFormat, "body", nil, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return errors.ValidationError(errors.CodeInvalidData, "body", nil, err)
	}

	setting := receipt.NewSetting(req.ShowCollegeHeader, req.MaskedFeeHeadIDs, req.MaskName)
	if err := h.store.SaveReceiptSetting(c.Context(), setting); err != nil {
		return err
	}
	return c.JSON(settingResponse(setting))
}

// BulkDemands normalizes and persists a demand upload batch. Valid rows are
// saved and malformed rows are reported back row-wise; partial acceptance is
// the contract.
// POST /api/demands/bulk
func (h *Handler) BulkDemands(c *fiber.Ctx) error {
	var req BulkDemandRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.ValidationError(errors.CodeInvalidFormat, "body", nil, err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return errors.ValidationError(errors.CodeMissingField, "demands", nil, err).
			WithSuggestion("Provide a non-empty demands array")
	}

	result, err := normalizer.Normalize(req.Demands, nil)
	if err != nil {
		return err
	}

	if err := h.store.SaveDemands(c.Context(), result.Demands); err != nil {
		return err
	}

	h.logger.WithFields(logger.Fields{
		"accepted": len(result.Demands),
		"rejected": len(result.Rejected),
	}).Info("Demand batch uploaded")

	status := fiber.StatusCreated
	if len(result.Rejected) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(BulkDemandResponse{
		Accepted: len(result.Demands),
		Rejected: result.Rejected,
	})
}

// settingResponse is the JSON shape for the receipt setting endpoints
func settingResponse(s receipt.Setting) fiber.Map {
	return fiber.Map{
		"showCollegeHeader": s.ShowCollegeHeader,
		"maskedFeeHeadIds":  s.MaskedIDs(),
		"maskName":          s.MaskName,
	}
}

// parseRange parses the from/to query parameters into a report range
func parseRange(fromRaw, toRaw string) (reports.Range, error) {
	if strings.TrimSpace(fromRaw) == "" || strings.TrimSpace(toRaw) == "" {
		return reports.Range{}, errors.InvalidRange("both from and to are required")
	}
	start, err := models.ParseTimeWithFormats(fromRaw)
	if err != nil {
		return reports.Range{}, errors.InvalidRange("from is not a recognized date")
	}
	end, err := models.ParseTimeWithFormats(toRaw)
	if err != nil {
		return reports.Range{}, errors.InvalidRange("to is not a recognized date")
	}
	r := reports.Range{Start: start, End: end}
	return r, r.Validate()
}

// dayBounds widens a range to inclusive day boundaries for the storage query,
// matching the aggregator's own day-boundary filter.
func dayBounds(r reports.Range, config *reports.Config) (time.Time, time.Time) {
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}
	start := r.Start.In(loc)
	end := r.End.In(loc)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return from, to
}
