// Package eligibility decides which appellate cases go on to the expensive
// downstream steps. Rules run in a fixed order and the first one that fires
// decides the case.
package eligibility

import (
	"fmt"
	"regexp"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/ppiankov/docketsift/internal/docket"
	"github.com/ppiankov/docketsift/internal/logging"
	"github.com/ppiankov/docketsift/internal/model"
	"github.com/ppiankov/docketsift/internal/names"
)

const dateLayout = "2006-01-02"

// Classifier applies the eligibility rules. It holds no mutable state after
// construction and is safe for concurrent use.
type Classifier struct {
	rules      *docket.Rules
	matcher    *names.Matcher
	staleAfter int
	loc        *time.Location
	failOpen   bool
	noMerit    []*regexp.Regexp
	nearMiss   float64
	now        func() time.Time
	logger     *zap.Logger
}

// Option customizes a Classifier
type Option func(*Classifier)

// WithClock fixes the time the staleness rule measures against
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithLogger sets the logger used for near-miss diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) { c.logger = logging.OrNop(l) }
}

// WithMatcher shares a name matcher between classifiers
func WithMatcher(m *names.Matcher) Option {
	return func(c *Classifier) { c.matcher = m }
}

// New builds a classifier from configuration. A nil config uses the defaults.
func New(cfg *model.Config, opts ...Option) (*Classifier, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	rules, err := docket.NewRules(&cfg.Docket)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		rules:      rules,
		staleAfter: cfg.Classifier.StaleAfterDays,
		nearMiss:   cfg.Classifier.NearMissThreshold,
		now:        time.Now,
		logger:     zap.NewNop(),
	}

	switch cfg.Classifier.JudgmentPolicy {
	case "", model.JudgmentFailClosed:
	case model.JudgmentFailOpen:
		c.failOpen = true
	default:
		return nil, fmt.Errorf("unknown judgment policy %q", cfg.Classifier.JudgmentPolicy)
	}

	if c.staleAfter <= 0 {
		c.staleAfter = 365
	}
	// An empty zone loads as UTC
	c.loc, err = time.LoadLocation(cfg.Classifier.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Classifier.Timezone, err)
	}
	if c.nearMiss <= 0 {
		c.nearMiss = 0.92
	}

	for _, m := range cfg.Classifier.NoMeritMarkers {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(m) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile no-merit marker %q: %w", m, err)
		}
		c.noMerit = append(c.noMerit, re)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.matcher == nil {
		c.matcher = names.NewMatcher(0)
	}

	return c, nil
}

// Rules returns the docket conventions the classifier was built with
func (c *Classifier) Rules() *docket.Rules {
	return c.rules
}

// Classify decides one case against a corpus snapshot
func (c *Classifier) Classify(rec *model.CaseRecord, corpus []model.CaseRecord) model.Decision {
	return c.ClassifyWith(rec, NewCompanionIndex(c.rules, corpus))
}

// ClassifyWith decides one case against a prebuilt companion index. A nil
// record has no parties and is disqualified as such.
func (c *Classifier) ClassifyWith(rec *model.CaseRecord, idx *CompanionIndex) model.Decision {
	if rec == nil {
		return model.Disqualified("", model.ReasonNoNonStateParties, "no case record")
	}

	parties := rec.NonStateParties()
	if len(parties) == 0 {
		return model.Disqualified(rec.CaseID, model.ReasonNoNonStateParties, "")
	}

	if !rec.IsAppellateCase {
		return model.Disqualified(rec.CaseID, model.ReasonNotAppellate, "case number does not match the appellate pattern")
	}

	if d, ok := c.checkCompanion(rec.CaseID, parties, idx); ok {
		return d
	}

	if d, ok := c.checkStale(rec); ok {
		return d
	}

	if rec.HasJudgment == nil {
		if !c.failOpen {
			return model.Disqualified(rec.CaseID, model.ReasonJudgmentUnknown, "has_judgment not set")
		}
	} else if *rec.HasJudgment {
		return model.Disqualified(rec.CaseID, model.ReasonJudgment, "")
	}

	if rec.MandateIssued {
		return model.Disqualified(rec.CaseID, model.ReasonMandate, "")
	}

	if d, ok := c.checkNoMerit(rec); ok {
		return d
	}

	return model.Eligible(rec.CaseID)
}

func (c *Classifier) checkCompanion(caseID string, parties []model.Party, idx *CompanionIndex) (model.Decision, bool) {
	if idx == nil {
		return model.Decision{}, false
	}

	for _, p := range parties {
		for _, cp := range idx.parties {
			if c.matcher.Match(p.Name, cp.Name) {
				d := model.Disqualified(caseID, model.ReasonCompanionCase,
					fmt.Sprintf("%q matches %q on %s", p.Name, cp.Name, cp.CaseID))
				d.CompanionCase = cp.CaseID
				d.MatchedParty = cp.Name
				return d, true
			}
		}
	}

	if c.logger.Core().Enabled(zap.DebugLevel) {
		c.logNearMisses(caseID, parties, idx)
	}
	return model.Decision{}, false
}

// logNearMisses reports companion names that share a surname and score high
// on similarity but did not match
func (c *Classifier) logNearMisses(caseID string, parties []model.Party, idx *CompanionIndex) {
	for _, p := range parties {
		pn, ok := c.matcher.Parse(p.Name)
		if !ok {
			continue
		}
		for _, cp := range idx.parties {
			cn, ok := c.matcher.Parse(cp.Name)
			if !ok || cn.Surname != pn.Surname {
				continue
			}
			score := names.Similarity(p.Name, cp.Name)
			if score < c.nearMiss {
				continue
			}
			c.logger.Debug("Companion name near miss",
				zap.String("case_id", caseID),
				zap.String("party", p.Name),
				zap.String("companion_case", cp.CaseID),
				zap.String("companion_party", cp.Name),
				zap.Float64("similarity", score),
			)
		}
	}
}

func (c *Classifier) checkStale(rec *model.CaseRecord) (model.Decision, bool) {
	latest, ok := rec.LatestCalendarDate()
	if !ok {
		return model.Decision{}, false
	}

	if daysBetween(latest, c.now().In(c.loc)) <= c.staleAfter {
		return model.Decision{}, false
	}

	d := model.Disqualified(rec.CaseID, model.ReasonStale,
		"latest calendar date "+latest.Format(dateLayout))
	d.StaleDate = &latest
	return d, true
}

// daysBetween counts whole calendar days from one date to another. Each side
// is read as the calendar date it shows in its own location, so a setting
// scraped as midnight UTC and a clock in court time compare by date.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (c *Classifier) checkNoMerit(rec *model.CaseRecord) (model.Decision, bool) {
	for _, b := range rec.Briefs {
		for _, re := range c.noMerit {
			if re.MatchString(b.Description) {
				return model.Disqualified(rec.CaseID, model.ReasonNoMerit, b.Description), true
			}
		}
	}
	return model.Decision{}, false
}
