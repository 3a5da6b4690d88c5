package eligibility

import (
	"github.com/ppiankov/docketsift/internal/docket"
	"github.com/ppiankov/docketsift/internal/model"
)

// companionParty is a non-state party on a pending companion-docket case
type companionParty struct {
	CaseID string
	Name   string
}

// CompanionIndex holds the non-state party names of every non-filtered
// companion-docket case in a corpus snapshot. Build it once per pass.
type CompanionIndex struct {
	parties []companionParty
}

// NewCompanionIndex collects companion parties from a corpus
func NewCompanionIndex(rules *docket.Rules, corpus []model.CaseRecord) *CompanionIndex {
	idx := &CompanionIndex{}
	for i := range corpus {
		rec := &corpus[i]
		if rec.Filtered || !rules.IsCompanion(rec.CaseID) {
			continue
		}
		for _, p := range rec.NonStateParties() {
			idx.parties = append(idx.parties, companionParty{CaseID: rec.CaseID, Name: p.Name})
		}
	}
	return idx
}

// Len returns the number of indexed party names
func (idx *CompanionIndex) Len() int {
	return len(idx.parties)
}
