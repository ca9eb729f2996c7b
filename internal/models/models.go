// Package models defines the canonical record shapes for the fee ledger.
//
// Demands describe what a student owes for a fee head, academic year and
// semester; transactions describe what was actually collected or waived.
// Both are keyed by FeeKey, a comparable composite key, so downstream
// reconciliation and reporting never rely on concatenated string keys.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of a fee transaction
type TransactionType string

const (
	// TransactionTypeDebit represents money collected against a demand
	TransactionTypeDebit TransactionType = "DEBIT"
	// TransactionTypeCredit represents a concession or waiver applied against a demand
	TransactionTypeCredit TransactionType = "CREDIT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// PaymentMode represents how a collection was received
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "CASH"
	PaymentModeBank PaymentMode = "BANK"
)

// String returns the string representation of PaymentMode
func (m PaymentMode) String() string {
	return string(m)
}

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	return m == PaymentModeCash || m == PaymentModeBank
}

// SemesterTerm identifies the semester a demand or transaction belongs to.
// SemesterYearly is the null bucket: a fee charged for the whole year.
// A yearly transaction only ever settles a yearly demand, and a concrete
// semester only settles the same semester.
type SemesterTerm int

const (
	SemesterYearly SemesterTerm = 0
	SemesterFirst  SemesterTerm = 1
	SemesterSecond SemesterTerm = 2
)

// IsValid checks if the semester term is one of the known buckets
func (s SemesterTerm) IsValid() bool {
	return s == SemesterYearly || s == SemesterFirst || s == SemesterSecond
}

// String returns a display label for the semester term
func (s SemesterTerm) String() string {
	switch s {
	case SemesterFirst:
		return "Sem 1"
	case SemesterSecond:
		return "Sem 2"
	default:
		return "Yearly"
	}
}

// FeeKey uniquely identifies a ledger position within one student's account.
// It is a comparable struct so it can index maps directly; two keys with
// the same components always compare equal regardless of how they were built.
type FeeKey struct {
	FeeHeadID   string
	StudentYear int
	Semester    SemesterTerm
}

// String returns a display representation of the key
func (k FeeKey) String() string {
	return fmt.Sprintf("%s/year-%d/%s", k.FeeHeadID, k.StudentYear, k.Semester)
}

// Less orders keys by fee head, then student year, then semester. Used to
// emit ledger lines in a stable order.
func (k FeeKey) Less(other FeeKey) bool {
	if k.FeeHeadID != other.FeeHeadID {
		return k.FeeHeadID < other.FeeHeadID
	}
	if k.StudentYear != other.StudentYear {
		return k.StudentYear < other.StudentYear
	}
	return k.Semester < other.Semester
}

// Demand represents a standing obligation: the amount a student is expected
// to pay for one fee head, student year and semester. Demands are immutable
// once they enter reconciliation; corrections are superseding writes upstream.
type Demand struct {
	StudentID           string          `json:"studentId"`
	FeeHeadID           string          `json:"feeHeadId"`
	AcademicYear        string          `json:"academicYear,omitempty"`
	StudentYear         int             `json:"studentYear"`
	Semester            SemesterTerm    `json:"semester"`
	Amount              decimal.Decimal `json:"amount"`
	Category            string          `json:"category,omitempty"`
	ScholarshipEligible bool            `json:"scholarshipEligible"`
}

// Key returns the composite ledger key of the demand
func (d *Demand) Key() FeeKey {
	return FeeKey{FeeHeadID: d.FeeHeadID, StudentYear: d.StudentYear, Semester: d.Semester}
}

// Validate performs basic validation on the Demand
func (d *Demand) Validate() error {
	if strings.TrimSpace(d.StudentID) == "" {
		return fmt.Errorf("demand student id cannot be empty")
	}
	if strings.TrimSpace(d.FeeHeadID) == "" {
		return fmt.Errorf("demand fee head id cannot be empty")
	}
	if d.StudentYear < 1 {
		return fmt.Errorf("demand student year must be at least 1, got %d", d.StudentYear)
	}
	if !d.Semester.IsValid() {
		return fmt.Errorf("invalid demand semester: %d", d.Semester)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("demand amount cannot be negative: %s", d.Amount)
	}
	return nil
}

// Transaction represents a single recorded money movement against a student's
// account. Transactions are created once at collection time and never edited;
// corrections are new offsetting transactions.
type Transaction struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"studentId"`
	FeeHeadID   string          `json:"feeHeadId"`
	StudentYear int             `json:"studentYear"`
	Semester    SemesterTerm    `json:"semester"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Mode        PaymentMode     `json:"mode"`
	CashierID   string          `json:"cashierId"`
	College     string          `json:"college,omitempty"`
	ReceiptNo   string          `json:"receiptNo"`
	CollectedAt time.Time       `json:"collectedAt"`
}

// Key returns the composite ledger key of the transaction
func (t *Transaction) Key() FeeKey {
	return FeeKey{FeeHeadID: t.FeeHeadID, StudentYear: t.StudentYear, Semester: t.Semester}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.StudentID) == "" {
		return fmt.Errorf("transaction student id cannot be empty")
	}
	if strings.TrimSpace(t.FeeHeadID) == "" {
		return fmt.Errorf("transaction fee head id cannot be empty")
	}
	if t.StudentYear < 1 {
		return fmt.Errorf("transaction student year must be at least 1, got %d", t.StudentYear)
	}
	if !t.Semester.IsValid() {
		return fmt.Errorf("invalid transaction semester: %d", t.Semester)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction amount must be a non-negative magnitude, got %s", t.Amount)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}
	if !t.Mode.IsValid() {
		return fmt.Errorf("invalid payment mode: %s", t.Mode)
	}
	if t.CollectedAt.IsZero() {
		return fmt.Errorf("transaction collection time cannot be zero")
	}
	return nil
}

// SignedAmount returns the transaction's contribution to the net paid total:
// positive for DEBIT, negative for CREDIT.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeCredit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsDebit returns true if the transaction collected money
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// IsCredit returns true if the transaction is a concession
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Student: %s, Key: %s, Amount: %s, Type: %s, Mode: %s}",
		t.ID, t.StudentID, t.Key(), t.Amount.String(), t.Type, t.Mode)
}

// StudentInfo is the directory record used to enrich report labels. The core
// treats it as an opaque name-resolution value keyed by student id.
type StudentInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	College     string `json:"college"`
	Course      string `json:"course"`
	Branch      string `json:"branch"`
	StudentYear int    `json:"studentYear"`
	Category    string `json:"category"`
}

// Parsing helpers for raw upload data

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Strip currency symbols and thousand separators seen in uploads
	s = strings.ReplaceAll(s, "Rs.", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseTransactionType parses and validates a transaction type from string
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBIT", "D", "DR":
		return TransactionTypeDebit, nil
	case "CREDIT", "C", "CR", "CONCESSION":
		return TransactionTypeCredit, nil
	default:
		return "", fmt.Errorf("invalid transaction type '%s': must be DEBIT or CREDIT", s)
	}
}

// ParsePaymentMode parses and validates a payment mode from string
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH":
		return PaymentModeCash, nil
	case "BANK", "ONLINE", "DD", "CHEQUE":
		return PaymentModeBank, nil
	default:
		return "", fmt.Errorf("invalid payment mode '%s': must be CASH or BANK", s)
	}
}

// ParseSemester parses a semester value from string. An empty string maps to
// the yearly bucket, mirroring a null semester in upload data.
func ParseSemester(s string) (SemesterTerm, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "yearly") || strings.EqualFold(s, "null") {
		return SemesterYearly, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return SemesterYearly, fmt.Errorf("invalid semester '%s': %w", s, err)
	}

	term := SemesterTerm(n)
	if !term.IsValid() {
		return SemesterYearly, fmt.Errorf("invalid semester %d: must be 1 or 2", n)
	}
	return term, nil
}

// ParseStudentYear parses a student year (1..N) from string
func ParseStudentYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("student year cannot be empty")
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid student year '%s': %w", s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("student year must be at least 1, got %d", n)
	}
	return n, nil
}

// ParseTimeWithFormats attempts to parse time from string using the formats
// commonly seen in collection exports
func ParseTimeWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"02-01-2006 15:04:05",
		"02-01-2006",
		"02/01/2006",
		"2006/01/02",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// ParseBool parses the truthy encodings seen in upload rows
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
