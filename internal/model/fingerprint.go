package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// fingerprintInput is the subset of a record that classification reads
type fingerprintInput struct {
	CaseID          string          `json:"case_id"`
	IsAppellateCase bool            `json:"is_appellate_case"`
	Parties         []Party         `json:"parties"`
	CalendarEvents  []CalendarEvent `json:"calendar_events"`
	Events          []DocketEvent   `json:"events"`
	MandateIssued   bool            `json:"mandate_issued"`
	HasJudgment     *bool           `json:"has_judgment"`
	Briefs          []BriefMeta     `json:"briefs"`
}

// ComputeFingerprint hashes the classification inputs of a record. Two records
// with the same fingerprint classify identically against the same corpus. The
// events table is included because the judgment flag is inferred from it.
func (c *CaseRecord) ComputeFingerprint() string {
	in := fingerprintInput{
		CaseID:          c.CaseID,
		IsAppellateCase: c.IsAppellateCase,
		Parties:         c.Parties,
		CalendarEvents:  c.CalendarEvents,
		Events:          c.Events,
		MandateIssued:   c.MandateIssued,
		HasJudgment:     c.HasJudgment,
		Briefs:          c.Briefs,
	}
	// Marshal of these field types cannot fail
	data, _ := json.Marshal(in)
	hash := sha256.Sum256(data)
	return "docketsift:v2:" + hex.EncodeToString(hash[:])
}
