// Package receipt applies the display-masking layer for printed receipts.
//
// Masking is purely presentational: selected fee heads are collapsed into a
// single synthetic line carrying the configured mask name, with amounts equal
// to the sum of the masked lines. The underlying ledger is never mutated and
// every amount field is conserved across the transform.
package receipt

import (
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/internal/ledger"

	"github.com/shopspring/decimal"
)

// DefaultMaskName is the label used for the synthetic masked line when no
// setting has been stored
const DefaultMaskName = "Processing Fee"

// Setting is the singleton receipt display configuration. Absence of a
// stored setting is equivalent to DefaultSetting().
type Setting struct {
	ShowCollegeHeader bool                `json:"showCollegeHeader"`
	MaskedFeeHeadIDs  map[string]struct{} `json:"-"`
	MaskName          string              `json:"maskName"`
}

// DefaultSetting returns the configuration used when none has been stored
func DefaultSetting() Setting {
	return Setting{
		ShowCollegeHeader: true,
		MaskedFeeHeadIDs:  map[string]struct{}{},
		MaskName:          DefaultMaskName,
	}
}

// NewSetting builds a Setting from a masked id list
func NewSetting(showCollegeHeader bool, maskedIDs []string, maskName string) Setting {
	s := Setting{
		ShowCollegeHeader: showCollegeHeader,
		MaskedFeeHeadIDs:  make(map[string]struct{}, len(maskedIDs)),
		MaskName:          maskName,
	}
	if s.MaskName == "" {
		s.MaskName = DefaultMaskName
	}
	for _, id := range maskedIDs {
		if id != "" {
			s.MaskedFeeHeadIDs[id] = struct{}{}
		}
	}
	return s
}

// MaskedIDs returns the masked fee head ids as a sorted-insensitive slice
func (s Setting) MaskedIDs() []string {
	ids := make([]string, 0, len(s.MaskedFeeHeadIDs))
	for id := range s.MaskedFeeHeadIDs {
		ids = append(ids, id)
	}
	return ids
}

// isMasked reports whether a fee head id is configured for masking. The
// synthetic line's empty fee head id never matches, which is what makes the
// transform idempotent.
func (s Setting) isMasked(feeHeadID string) bool {
	if feeHeadID == "" {
		return false
	}
	_, ok := s.MaskedFeeHeadIDs[feeHeadID]
	return ok
}

// ApplyMask partitions the lines into visible and masked sets and, when any
// line was masked, appends one synthetic line summing the masked amounts.
// The input slice is never modified; with an empty masked set the input is
// returned as-is. Applying the transform to its own output is a no-op.
func ApplyMask(lines []ledger.LedgerLine, setting Setting) []ledger.LedgerLine {
	if len(setting.MaskedFeeHeadIDs) == 0 {
		return lines
	}

	visible := make([]ledger.LedgerLine, 0, len(lines))
	var masked []ledger.LedgerLine

	for _, line := range lines {
		if setting.isMasked(line.Key.FeeHeadID) {
			masked = append(masked, line)
		} else {
			visible = append(visible, line)
		}
	}

	if len(masked) == 0 {
		return lines
	}

	synthetic := ledger.LedgerLine{
		FeeHeadName: setting.MaskName,
		Demand:      decimal.Zero,
		Paid:        decimal.Zero,
		NetPaid:     decimal.Zero,
		Due:         decimal.Zero,
		CashPaid:    decimal.Zero,
		BankPaid:    decimal.Zero,
		CreditTotal: decimal.Zero,
	}
	for _, line := range masked {
		synthetic.Demand = synthetic.Demand.Add(line.Demand)
		synthetic.Paid = synthetic.Paid.Add(line.Paid)
		synthetic.NetPaid = synthetic.NetPaid.Add(line.NetPaid)
		synthetic.Due = synthetic.Due.Add(line.Due)
		synthetic.CashPaid = synthetic.CashPaid.Add(line.CashPaid)
		synthetic.BankPaid = synthetic.BankPaid.Add(line.BankPaid)
		synthetic.CreditTotal = synthetic.CreditTotal.Add(line.CreditTotal)
	}
	synthetic.Overpaid = synthetic.NetPaid.GreaterThan(synthetic.Demand)

	return append(visible, synthetic)
}
