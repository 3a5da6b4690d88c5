package docket

import (
	"strings"

	"github.com/ppiankov/docketsift/internal/model"
)

// JudgmentDetector infers whether a judgment has been entered from the
// events table and brief listings of a case
type JudgmentDetector struct {
	markers  []string
	opinions []string
	finality []string
}

// NewJudgmentDetector builds a detector from configuration. A nil config uses
// the defaults.
func NewJudgmentDetector(cfg *model.DocketConfig) *JudgmentDetector {
	if cfg == nil {
		cfg = &model.DefaultConfig().Docket
	}
	return &JudgmentDetector{
		markers:  lowerAll(cfg.JudgmentMarkers),
		opinions: lowerAll(cfg.OpinionEvents),
		finality: lowerAll(cfg.FinalityKeywords),
	}
}

// Resolve returns nil when the events table was never scraped, true when any
// event or brief text shows a judgment, false otherwise
func (d *JudgmentDetector) Resolve(rec *model.CaseRecord) *bool {
	if rec.Events == nil {
		return nil
	}

	for _, ev := range rec.Events {
		text := strings.ToLower(ev.EventType + " " + ev.Disposition + " " + ev.Description)
		if containsAny(text, d.markers) {
			return model.Bool(true)
		}
		if containsAny(strings.ToLower(ev.EventType), d.opinions) && containsAny(text, d.finality) {
			return model.Bool(true)
		}
	}

	for _, b := range rec.Briefs {
		text := strings.ToLower(b.EventType + " " + b.Description)
		if containsAny(text, d.markers) {
			return model.Bool(true)
		}
	}

	return model.Bool(false)
}

// Backfill sets has_judgment on a record that lacks it. It reports whether
// the flag changed.
func (d *JudgmentDetector) Backfill(rec *model.CaseRecord) bool {
	if rec.HasJudgment != nil {
		return false
	}
	rec.HasJudgment = d.Resolve(rec)
	return rec.HasJudgment != nil
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
