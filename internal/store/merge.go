package store

import (
	"github.com/ppiankov/docketsift/internal/model"
)

// Merge upserts incoming records over existing ones by case_id.
//
// A stored outcome survives only when the incoming record fingerprints the
// same as the inputs the outcome was computed from; otherwise the outcome is
// cleared so the case is classified again. A judgment flag backfilled on the
// stored record is carried over only together with the outcome: if the
// events table changed, the flag is dropped and inferred again. The result
// is ordered by case_id.
func Merge(existing, incoming []model.CaseRecord) []model.CaseRecord {
	byID := make(map[string]model.CaseRecord, len(existing)+len(incoming))
	for _, rec := range existing {
		byID[rec.CaseID] = rec
	}

	for _, rec := range incoming {
		prev, ok := byID[rec.CaseID]
		carried := false
		if ok && rec.HasJudgment == nil && prev.HasJudgment != nil {
			v := *prev.HasJudgment
			rec.HasJudgment = &v
			carried = true
		}

		if ok && prev.Fingerprint != "" && rec.ComputeFingerprint() == prev.Fingerprint {
			rec.Filtered = prev.Filtered
			rec.FilterReason = prev.FilterReason
			rec.FilterDetail = prev.FilterDetail
			rec.Fingerprint = prev.Fingerprint
			rec.ClassifiedAt = prev.ClassifiedAt
		} else {
			if carried {
				rec.HasJudgment = nil
			}
			rec.ClearOutcome()
		}
		byID[rec.CaseID] = rec
	}

	out := make([]model.CaseRecord, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	sortByCaseID(out)
	return out
}
