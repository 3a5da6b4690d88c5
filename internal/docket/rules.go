// Package docket holds a jurisdiction's docket conventions: which case
// numbers belong to the intermediate appellate courts, which belong to the
// companion docket, and how the prosecution side is labeled.
package docket

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/docketsift/internal/model"
)

// Rules applies the docket conventions from configuration
type Rules struct {
	appellate         *regexp.Regexp
	companionPrefixes []string
	stateMarkers      []string
	stateRoles        map[string]bool
}

// NewRules compiles docket conventions. A nil config uses the defaults.
func NewRules(cfg *model.DocketConfig) (*Rules, error) {
	if cfg == nil {
		cfg = &model.DefaultConfig().Docket
	}

	re, err := regexp.Compile(cfg.AppellatePattern)
	if err != nil {
		return nil, fmt.Errorf("compile appellate pattern: %w", err)
	}

	rules := &Rules{
		appellate:  re,
		stateRoles: make(map[string]bool, len(cfg.StateRoles)),
	}

	for _, p := range cfg.CompanionPrefixes {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			rules.companionPrefixes = append(rules.companionPrefixes, p)
		}
	}
	for _, m := range cfg.StatePartyMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			rules.stateMarkers = append(rules.stateMarkers, m)
		}
	}
	for _, r := range cfg.StateRoles {
		rules.stateRoles[strings.ToLower(strings.TrimSpace(r))] = true
	}

	return rules, nil
}

// IsAppellate reports whether a case number belongs to an intermediate
// court of appeals, e.g. "05-24-00123-CR"
func (r *Rules) IsAppellate(caseID string) bool {
	return r.appellate.MatchString(strings.ToUpper(strings.TrimSpace(caseID)))
}

// IsCompanion reports whether a case number belongs to the companion docket,
// e.g. "PD-0456-24"
func (r *Rules) IsCompanion(caseID string) bool {
	id := strings.ToUpper(strings.TrimSpace(caseID))
	for _, p := range r.companionPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// IsStateParty reports whether a party is on the prosecution side: a role
// equal to a state role label, or a name or role containing a state marker
func (r *Rules) IsStateParty(name, role string) bool {
	lowerRole := strings.ToLower(strings.TrimSpace(role))
	if r.stateRoles[lowerRole] {
		return true
	}

	lowerName := strings.ToLower(name)
	for _, m := range r.stateMarkers {
		if strings.Contains(lowerName, m) || strings.Contains(lowerRole, m) {
			return true
		}
	}
	return false
}

// CourtCode maps an appellate case number to its court, "05-..." to "coa05".
// Other case numbers map to "".
func (r *Rules) CourtCode(caseID string) string {
	if !r.IsAppellate(caseID) {
		return ""
	}
	id := strings.TrimSpace(caseID)
	if len(id) < 2 {
		return ""
	}
	return "coa" + id[:2]
}

// Normalize upper-cases the case number of a supplied record and fills its
// derived fields: appellate flag, court code, and party state flags
func (r *Rules) Normalize(rec *model.CaseRecord) {
	rec.CaseID = strings.ToUpper(strings.TrimSpace(rec.CaseID))
	rec.IsAppellateCase = r.IsAppellate(rec.CaseID)
	if rec.Court == "" {
		rec.Court = r.CourtCode(rec.CaseID)
	}
	for i := range rec.Parties {
		p := &rec.Parties[i]
		if !p.IsStateParty {
			p.IsStateParty = r.IsStateParty(p.Name, p.RoleType)
		}
	}
}
