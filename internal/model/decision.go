package model

import "time"

// FilterReason names the rule that decided a case
type FilterReason string

const (
	ReasonEligible          FilterReason = "eligible"
	ReasonNotAppellate      FilterReason = "not an appellate case"
	ReasonNoNonStateParties FilterReason = "no non-state parties"
	ReasonCompanionCase     FilterReason = "concurrent companion case"
	ReasonStale             FilterReason = "stale case"
	ReasonJudgmentUnknown   FilterReason = "judgment status unknown"
	ReasonJudgment          FilterReason = "judgment exists"
	ReasonMandate           FilterReason = "mandate issued"
	ReasonNoMerit           FilterReason = "no-merit brief present"
)

// Terminal reports whether an outcome can only change if the case's own
// data changes. Companion-case and unknown-judgment outcomes depend on
// the corpus or on a later backfill and are always re-evaluated.
func (r FilterReason) Terminal() bool {
	switch r {
	case ReasonNotAppellate, ReasonNoNonStateParties, ReasonStale,
		ReasonJudgment, ReasonMandate, ReasonNoMerit:
		return true
	default:
		return false
	}
}

func (r FilterReason) String() string {
	return string(r)
}

// Decision is the classifier's verdict for one case
type Decision struct {
	CaseID        string       `json:"case_id"`
	Eligible      bool         `json:"eligible"`
	Reason        FilterReason `json:"reason"`
	Detail        string       `json:"detail,omitempty"`
	StaleDate     *time.Time   `json:"stale_date,omitempty"`     // Latest calendar date when stale
	CompanionCase string       `json:"companion_case,omitempty"` // Companion case that pre-empted this one
	MatchedParty  string       `json:"matched_party,omitempty"`  // Companion party name that matched
}

// Eligible builds the passing decision for a case
func Eligible(caseID string) Decision {
	return Decision{CaseID: caseID, Eligible: true, Reason: ReasonEligible}
}

// Disqualified builds a failing decision for a case
func Disqualified(caseID string, reason FilterReason, detail string) Decision {
	return Decision{CaseID: caseID, Eligible: false, Reason: reason, Detail: detail}
}
