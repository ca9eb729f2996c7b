// Package parsers reads bulk upload CSV files into raw demand and
// transaction rows for the normalizer.
//
// The parsers are deliberately dumb about values: they resolve headers
// (including the column-name aliases used by different campus exports) and
// hand the field strings to the normalizer, which owns all value coercion
// and row-wise rejection. Only structural CSV problems are surfaced here.
package parsers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"
)

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	HasHeader        bool
	Delimiter        rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// ParseStats summarizes one parsing run
type ParseStats struct {
	TotalLines   int      `json:"total_lines"`
	RecordsRead  int      `json:"records_read"`
	SkippedLines []int    `json:"skipped_lines,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// AddSkipped records a structurally unreadable line
func (s *ParseStats) AddSkipped(line int, reason string) {
	s.SkippedLines = append(s.SkippedLines, line)
	s.Errors = append(s.Errors, fmt.Sprintf("line %d: %s", line, reason))
}

// BaseParser provides common CSV reading for the upload parsers
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &BaseParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("csv_parser"),
	}
}

// OpenFile opens a CSV file and returns the file handle plus a configured reader
func (bp *BaseParser) OpenFile(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, errors.FileError("", path, err)
	}

	reader := csv.NewReader(bufio.NewReader(file))
	reader.Comma = bp.config.Delimiter
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// columnMap resolves header names to field indexes
type columnMap map[string]int

// get returns the field at the named column, or "" when absent
func (cm columnMap) get(record []string, column string) string {
	idx, ok := cm[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ResolveHeaders reads the header row and maps canonical column names to
// field indexes, applying aliases so that differently labelled exports all
// resolve to the same canonical names. Required columns missing from the
// header abort the parse.
func (bp *BaseParser) ResolveHeaders(reader *csv.Reader, path string, aliases map[string]string, required []string) (columnMap, error) {
	if !bp.config.HasHeader {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "has_header", false, nil).
			WithSuggestion("upload files must carry a header row")
	}

	header, err := reader.Read()
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 1, "header", "", err)
	}

	cm := make(columnMap, len(header))
	for i, name := range header {
		canonical := strings.TrimSpace(name)
		if alias, ok := aliases[strings.ToLower(canonical)]; ok {
			canonical = alias
		}
		cm[canonical] = i
	}

	for _, column := range required {
		if _, ok := cm[column]; !ok {
			return nil, errors.ParseError(errors.CodeMissingColumn, path, 1, column, "", nil)
		}
	}

	return cm, nil
}

// isEmptyRecord reports whether every field of the record is blank
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// forEachRecord iterates data records, skipping empty rows and collecting
// structurally unreadable lines into the stats instead of aborting.
func (bp *BaseParser) forEachRecord(reader *csv.Reader, stats *ParseStats, fn func(line int, record []string)) error {
	line := 1 // header consumed
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.AddSkipped(line, err.Error())
			continue
		}
		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}
		stats.RecordsRead++
		fn(line, record)
	}
	stats.TotalLines = line - 1
	return nil
}
