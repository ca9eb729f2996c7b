package parsers

import (
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/normalizer"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"
)

// Canonical demand column names
const (
	demandColStudentID    = "studentId"
	demandColFeeHeadID    = "feeHeadId"
	demandColAcademicYear = "academicYear"
	demandColStudentYear  = "studentYear"
	demandColSemester     = "semester"
	demandColAmount       = "amount"
	demandColCategory     = "category"
	demandColScholarship  = "scholarshipEligible"
)

// DemandParserConfig configures demand upload parsing
type DemandParserConfig struct {
	*ParseConfig
	// ColumnAliases maps lowercased header labels to canonical column names
	ColumnAliases map[string]string
}

// DefaultDemandParserConfig covers the header variants produced by the
// campus fee-configuration exports
func DefaultDemandParserConfig() *DemandParserConfig {
	return &DemandParserConfig{
		ParseConfig: DefaultParseConfig(),
		ColumnAliases: map[string]string{
			"studentid":       demandColStudentID,
			"feeheadid":       demandColFeeHeadID,
			"academicyear":    demandColAcademicYear,
			"studentyear":     demandColStudentYear,
			"scholarshipeligible": demandColScholarship,
			"student_id":      demandColStudentID,
			"admission_no":    demandColStudentID,
			"admissionno":     demandColStudentID,
			"fee_head":        demandColFeeHeadID,
			"fee_head_id":     demandColFeeHeadID,
			"feehead":         demandColFeeHeadID,
			"academic_year":   demandColAcademicYear,
			"year_of_study":   demandColStudentYear,
			"student_year":    demandColStudentYear,
			"year":            demandColStudentYear,
			"sem":             demandColSemester,
			"amt":             demandColAmount,
			"demand":          demandColAmount,
			"demand_amount":   demandColAmount,
			"fee_category":    demandColCategory,
			"scholarship":     demandColScholarship,
			"scholarship_eligible": demandColScholarship,
		},
	}
}

// DemandParser reads bulk demand upload files into raw rows
type DemandParser struct {
	*BaseParser
	config *DemandParserConfig
	logger logger.Logger
}

// NewDemandParser creates a new DemandParser
func NewDemandParser(config *DemandParserConfig) *DemandParser {
	if config == nil {
		config = DefaultDemandParserConfig()
	}
	return &DemandParser{
		BaseParser: NewBaseParser(config.ParseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("demand_parser"),
	}
}

// ParseDemands reads a demand upload CSV into raw rows. Value-level problems
// are not checked here; the normalizer rejects bad rows individually.
func (dp *DemandParser) ParseDemands(path string) ([]normalizer.RawDemand, *ParseStats, error) {
	dp.logger.WithField("file_path", path).Info("Parsing demand upload")

	file, reader, err := dp.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	required := []string{demandColStudentID, demandColFeeHeadID, demandColStudentYear, demandColAmount}
	columns, err := dp.ResolveHeaders(reader, path, dp.config.ColumnAliases, required)
	if err != nil {
		return nil, nil, err
	}

	stats := &ParseStats{}
	var rows []normalizer.RawDemand

	err = dp.forEachRecord(reader, stats, func(line int, record []string) {
		rows = append(rows, normalizer.RawDemand{
			StudentID:           columns.get(record, demandColStudentID),
			FeeHeadID:           columns.get(record, demandColFeeHeadID),
			AcademicYear:        columns.get(record, demandColAcademicYear),
			StudentYear:         columns.get(record, demandColStudentYear),
			Semester:            columns.get(record, demandColSemester),
			Amount:              columns.get(record, demandColAmount),
			Category:            columns.get(record, demandColCategory),
			ScholarshipEligible: columns.get(record, demandColScholarship),
		})
	})
	if err != nil {
		return rows, stats, err
	}

	dp.logger.WithFields(logger.Fields{
		"file_path":    path,
		"records_read": stats.RecordsRead,
		"skipped":      len(stats.SkippedLines),
	}).Info("Demand upload parsed")

	return rows, stats, nil
}
