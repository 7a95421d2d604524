// Package caseref validates and classifies Case Reference Numbers.
package caseref

import (
	"regexp"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/internal/apperr"
)

// Format: two-digit year, dash, case-type digit (7 or 8), five-digit
// sequence, e.g. 26-711111.
var pattern = regexp.MustCompile(`^\d{2}-[78]\d{5}$`)

// CaseType is the category encoded in the first digit after the dash.
type CaseType string

const (
	CaseTypePersonalInjury CaseType = "personal_injury"
	CaseTypeBereavement    CaseType = "bereavement"
)

// CRN is a validated case reference number. Construct via Parse; the
// zero value is not valid.
type CRN string

// Parse validates s and returns it as a CRN. A malformed reference is
// an invalid-argument failure, raised before any query is built.
func Parse(s string) (CRN, error) {
	if !pattern.MatchString(s) {
		return "", apperr.Newf(apperr.KindInvalidArgument, "invalid case reference number %q", s)
	}
	return CRN(s), nil
}

// Valid reports whether s is a well-formed case reference number.
func Valid(s string) bool { return pattern.MatchString(s) }

func (c CRN) String() string { return string(c) }

// Year returns the two-digit year prefix.
func (c CRN) Year() string { return string(c)[:2] }

// CaseType returns the case category for the reference.
func (c CRN) CaseType() CaseType {
	if string(c)[3] == '7' {
		return CaseTypePersonalInjury
	}
	return CaseTypeBereavement
}
