// Package config builds component configurations from CLI flag values.
package config

import (
	"fmt"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/parsers"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/receipt"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reporter"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/reports"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/server"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/storage"
)

// CreateDemandParserConfig returns the demand upload parser configuration
func CreateDemandParserConfig() *parsers.DemandParserConfig {
	return parsers.DefaultDemandParserConfig()
}

// CreateTransactionParserConfig returns the payment upload parser configuration
func CreateTransactionParserConfig() *parsers.TransactionParserConfig {
	return parsers.DefaultTransactionParserConfig()
}

// CreateAggregatorConfig builds the report aggregation configuration.
// A zero maxRangeDays keeps the default guard; a negative value disables it.
func CreateAggregatorConfig(maxRangeDays int, timezone string) (*reports.Config, error) {
	config := reports.DefaultConfig()

	if maxRangeDays < 0 {
		config.MaxRangeDays = 0
	} else if maxRangeDays > 0 {
		config.MaxRangeDays = maxRangeDays
	}

	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %s: %w", timezone, err)
		}
		config.Location = loc
	}

	return config, nil
}

// CreateReportConfig builds the output configuration for the specified format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeBreakdowns = true
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeBreakdowns = false
	}

	return config
}

// CreateMaskSetting builds a receipt setting from CLI flag values. With no
// masked heads the setting is a no-op and the ledger renders unmasked.
func CreateMaskSetting(maskedHeads []string, maskName string, showCollege bool) receipt.Setting {
	return receipt.NewSetting(showCollege, maskedHeads, maskName)
}

// CreateStorageConfig builds the database configuration for the serve command
func CreateStorageConfig(dsn string, maxScanRows int) *storage.Config {
	config := storage.DefaultConfig()
	config.DSN = dsn
	if maxScanRows > 0 {
		config.MaxScanRows = maxScanRows
	}
	return config
}

// CreateServerConfig builds the HTTP server configuration
func CreateServerConfig(address string) *server.Config {
	config := server.DefaultConfig()
	if address != "" {
		config.Address = address
	}
	return config
}
