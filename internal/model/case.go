package model

import "time"

// CaseRecord is one docket entry as supplied by the scraper, plus the
// outcome of the last classification pass
type CaseRecord struct {
	CaseID          string          `json:"case_id"`
	Court           string          `json:"court,omitempty"`   // e.g. "coa05", derived from the case number
	IsAppellateCase bool            `json:"is_appellate_case"` // Derived from the case-number pattern
	Parties         []Party         `json:"parties"`
	CalendarEvents  []CalendarEvent `json:"calendar_events,omitempty"`
	Events          []DocketEvent   `json:"events"` // nil means the events table was never scraped
	MandateIssued   bool            `json:"mandate_issued"`
	HasJudgment     *bool           `json:"has_judgment,omitempty"` // nil means not yet known
	Briefs          []BriefMeta     `json:"briefs,omitempty"`

	Filtered     bool         `json:"filtered"`
	FilterReason FilterReason `json:"filter_reason,omitempty"`
	FilterDetail string       `json:"filter_detail,omitempty"`
	Fingerprint  string       `json:"fingerprint,omitempty"` // Hash of the inputs the outcome was computed from
	ClassifiedAt *time.Time   `json:"classified_at,omitempty"`
}

// Party is a named participant on a case
type Party struct {
	Name         string `json:"name"`
	RoleType     string `json:"role_type"`
	IsStateParty bool   `json:"is_state_party"` // Prosecution/government side
}

// CalendarEvent is a scheduled setting on the court's calendar
type CalendarEvent struct {
	SetDate      time.Time `json:"set_date"`
	CalendarType string    `json:"calendar_type,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// DocketEvent is a row of the case events table
type DocketEvent struct {
	Date        time.Time `json:"date"`
	EventType   string    `json:"event_type"`
	Disposition string    `json:"disposition,omitempty"`
	Description string    `json:"description,omitempty"`
}

// BriefMeta describes a brief listed on the case page
type BriefMeta struct {
	Date        time.Time `json:"date"`
	EventType   string    `json:"event_type,omitempty"`
	Description string    `json:"description"`
	DocType     string    `json:"doc_type,omitempty"`
	MediaID     string    `json:"media_id,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// NonStateParties returns the parties not on the prosecution side
func (c *CaseRecord) NonStateParties() []Party {
	var out []Party
	for _, p := range c.Parties {
		if !p.IsStateParty {
			out = append(out, p)
		}
	}
	return out
}

// LatestCalendarDate returns the most recent calendar setting, if any
func (c *CaseRecord) LatestCalendarDate() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, ev := range c.CalendarEvents {
		if ev.SetDate.IsZero() {
			continue
		}
		if !found || ev.SetDate.After(latest) {
			latest = ev.SetDate
			found = true
		}
	}
	return latest, found
}

// ApplyDecision records a classification outcome on the record
func (c *CaseRecord) ApplyDecision(d Decision, fingerprint string, at time.Time) {
	c.Filtered = !d.Eligible
	c.FilterReason = d.Reason
	c.FilterDetail = d.Detail
	c.Fingerprint = fingerprint
	at = at.UTC()
	c.ClassifiedAt = &at
}

// ClearOutcome drops any previous classification outcome
func (c *CaseRecord) ClearOutcome() {
	c.Filtered = false
	c.FilterReason = ""
	c.FilterDetail = ""
	c.Fingerprint = ""
	c.ClassifiedAt = nil
}

// Bool returns a pointer to b, for optional flags
func Bool(b bool) *bool {
	return &b
}
