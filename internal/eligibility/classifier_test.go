package eligibility

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/docketsift/internal/model"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newClassifier(t *testing.T, mutate func(*model.Config), opts ...Option) *Classifier {
	t.Helper()
	cfg := model.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

// eligibleCase passes every rule against an empty corpus
func eligibleCase() model.CaseRecord {
	return model.CaseRecord{
		CaseID:          "05-24-00123-CR",
		IsAppellateCase: true,
		Parties: []model.Party{
			{Name: "Smith, John A.", RoleType: "Appellant"},
			{Name: "The State of Texas", RoleType: "Appellee", IsStateParty: true},
		},
		CalendarEvents: []model.CalendarEvent{
			{SetDate: fixedNow.AddDate(0, 0, -30), CalendarType: "Submission"},
		},
		HasJudgment: model.Bool(false),
		Briefs: []model.BriefMeta{
			{Description: "Appellant's brief"},
		},
	}
}

func companionCase(id, name string, filtered bool) model.CaseRecord {
	return model.CaseRecord{
		CaseID: id,
		Parties: []model.Party{
			{Name: name, RoleType: "Petitioner"},
			{Name: "The State of Texas", RoleType: "Respondent", IsStateParty: true},
		},
		Filtered: filtered,
	}
}

func TestClassify_Eligible(t *testing.T) {
	c := newClassifier(t, nil)
	rec := eligibleCase()

	d := c.Classify(&rec, nil)
	assert.True(t, d.Eligible)
	assert.Equal(t, model.ReasonEligible, d.Reason)
	assert.Equal(t, rec.CaseID, d.CaseID)
}

func TestClassify_Rules(t *testing.T) {
	c := newClassifier(t, nil)

	tests := []struct {
		desc   string
		mutate func(*model.CaseRecord)
		reason model.FilterReason
	}{
		{
			desc:   "Zero parties",
			mutate: func(r *model.CaseRecord) { r.Parties = nil },
			reason: model.ReasonNoNonStateParties,
		},
		{
			desc: "Only state parties",
			mutate: func(r *model.CaseRecord) {
				r.Parties = []model.Party{{Name: "The State of Texas", RoleType: "Appellee", IsStateParty: true}}
			},
			reason: model.ReasonNoNonStateParties,
		},
		{
			desc: "Zero parties on a non-appellate case",
			mutate: func(r *model.CaseRecord) {
				r.Parties = nil
				r.IsAppellateCase = false
			},
			reason: model.ReasonNoNonStateParties,
		},
		{
			desc:   "Not appellate",
			mutate: func(r *model.CaseRecord) { r.IsAppellateCase = false },
			reason: model.ReasonNotAppellate,
		},
		{
			desc: "Stale at 366 days",
			mutate: func(r *model.CaseRecord) {
				r.CalendarEvents = []model.CalendarEvent{{SetDate: fixedNow.AddDate(0, 0, -366)}}
			},
			reason: model.ReasonStale,
		},
		{
			desc: "Not stale at 364 days",
			mutate: func(r *model.CaseRecord) {
				r.CalendarEvents = []model.CalendarEvent{{SetDate: fixedNow.AddDate(0, 0, -364)}}
			},
			reason: model.ReasonEligible,
		},
		{
			desc: "Not stale at exactly 365 days",
			mutate: func(r *model.CaseRecord) {
				r.CalendarEvents = []model.CalendarEvent{{SetDate: fixedNow.AddDate(0, 0, -365)}}
			},
			reason: model.ReasonEligible,
		},
		{
			desc: "Latest of several calendar events counts",
			mutate: func(r *model.CaseRecord) {
				r.CalendarEvents = []model.CalendarEvent{
					{SetDate: fixedNow.AddDate(-3, 0, 0)},
					{SetDate: fixedNow.AddDate(0, 0, -10)},
					{SetDate: fixedNow.AddDate(-2, 0, 0)},
				}
			},
			reason: model.ReasonEligible,
		},
		{
			desc:   "No calendar events",
			mutate: func(r *model.CaseRecord) { r.CalendarEvents = nil },
			reason: model.ReasonEligible,
		},
		{
			desc:   "Judgment exists",
			mutate: func(r *model.CaseRecord) { r.HasJudgment = model.Bool(true) },
			reason: model.ReasonJudgment,
		},
		{
			desc:   "Judgment unknown fails closed",
			mutate: func(r *model.CaseRecord) { r.HasJudgment = nil },
			reason: model.ReasonJudgmentUnknown,
		},
		{
			desc:   "Mandate issued",
			mutate: func(r *model.CaseRecord) { r.MandateIssued = true },
			reason: model.ReasonMandate,
		},
		{
			desc: "Anders brief",
			mutate: func(r *model.CaseRecord) {
				r.Briefs = append(r.Briefs, model.BriefMeta{Description: "Appellant's ANDERS Brief"})
			},
			reason: model.ReasonNoMerit,
		},
		{
			desc: "Anders as part of another word",
			mutate: func(r *model.CaseRecord) {
				r.Briefs = append(r.Briefs, model.BriefMeta{Description: "Letter from Sanderson"})
			},
			reason: model.ReasonEligible,
		},
		{
			desc: "Stale wins over judgment",
			mutate: func(r *model.CaseRecord) {
				r.CalendarEvents = []model.CalendarEvent{{SetDate: fixedNow.AddDate(-2, 0, 0)}}
				r.HasJudgment = model.Bool(true)
			},
			reason: model.ReasonStale,
		},
		{
			desc: "Judgment wins over mandate",
			mutate: func(r *model.CaseRecord) {
				r.HasJudgment = model.Bool(true)
				r.MandateIssued = true
			},
			reason: model.ReasonJudgment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			rec := eligibleCase()
			tt.mutate(&rec)
			d := c.Classify(&rec, nil)
			if d.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q (%s)", tt.reason, d.Reason, d.Detail)
			}
			if d.Eligible != (tt.reason == model.ReasonEligible) {
				t.Errorf("Eligible = %v for reason %q", d.Eligible, d.Reason)
			}
		})
	}
}

func TestClassify_StaleDate(t *testing.T) {
	c := newClassifier(t, nil)
	rec := eligibleCase()
	old := fixedNow.AddDate(-1, -1, 0)
	rec.CalendarEvents = []model.CalendarEvent{{SetDate: old}}

	d := c.Classify(&rec, nil)
	require.Equal(t, model.ReasonStale, d.Reason)
	require.NotNil(t, d.StaleDate)
	assert.True(t, d.StaleDate.Equal(old))
	assert.Contains(t, d.Detail, old.Format("2006-01-02"))
}

func TestClassify_StaleByCalendarDay(t *testing.T) {
	tests := []struct {
		desc    string
		now     time.Time
		setDate time.Time
		stale   bool
	}{
		{
			desc:    "midnight setting 365 days before a midday run",
			now:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			setDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			desc:    "midnight setting 366 days before a midday run",
			now:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			setDate: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
			stale:   true,
		},
		{
			desc:    "evening run in court time is still the same day",
			now:     time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC), // 22:00 CDT on June 15
			setDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			desc:    "first minute of the next court day",
			now:     time.Date(2025, 6, 16, 5, 1, 0, 0, time.UTC), // 00:01 CDT on June 16
			setDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			stale:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			now := tt.now
			c := newClassifier(t, nil, WithClock(func() time.Time { return now }))
			rec := eligibleCase()
			rec.CalendarEvents = []model.CalendarEvent{{SetDate: tt.setDate}}

			d := c.Classify(&rec, nil)
			if tt.stale {
				assert.Equal(t, model.ReasonStale, d.Reason)
			} else {
				assert.True(t, d.Eligible, "got %s (%s)", d.Reason, d.Detail)
			}
		})
	}
}

func TestClassify_NilRecord(t *testing.T) {
	c := newClassifier(t, nil)

	var d model.Decision
	require.NotPanics(t, func() { d = c.ClassifyWith(nil, nil) })
	assert.False(t, d.Eligible)
	assert.Equal(t, model.ReasonNoNonStateParties, d.Reason)

	require.NotPanics(t, func() { d = c.Classify(nil, []model.CaseRecord{eligibleCase()}) })
	assert.False(t, d.Eligible)
}

func TestClassify_JudgmentFailOpen(t *testing.T) {
	c := newClassifier(t, func(cfg *model.Config) {
		cfg.Classifier.JudgmentPolicy = model.JudgmentFailOpen
	})
	rec := eligibleCase()
	rec.HasJudgment = nil

	d := c.Classify(&rec, nil)
	assert.True(t, d.Eligible)

	rec.HasJudgment = model.Bool(true)
	d = c.Classify(&rec, nil)
	assert.Equal(t, model.ReasonJudgment, d.Reason)
}

func TestClassify_CompanionCase(t *testing.T) {
	c := newClassifier(t, nil)
	rec := eligibleCase()
	corpus := []model.CaseRecord{
		rec,
		companionCase("PD-0456-24", "John Alan Smith", false),
	}

	d := c.Classify(&rec, corpus)
	require.Equal(t, model.ReasonCompanionCase, d.Reason)
	assert.False(t, d.Eligible)
	assert.Equal(t, "PD-0456-24", d.CompanionCase)
	assert.Equal(t, "John Alan Smith", d.MatchedParty)

	// Filtering the companion case removes it from the corpus
	corpus[1].Filtered = true
	d = c.Classify(&rec, corpus)
	assert.True(t, d.Eligible)
	assert.Equal(t, model.ReasonEligible, d.Reason)
}

func TestClassify_CompanionIgnores(t *testing.T) {
	c := newClassifier(t, nil)
	rec := eligibleCase()

	tests := []struct {
		desc   string
		corpus []model.CaseRecord
	}{
		{
			desc:   "Different person",
			corpus: []model.CaseRecord{companionCase("PD-0456-24", "Jones, Mary", false)},
		},
		{
			desc: "Matching name on a non-companion docket",
			corpus: []model.CaseRecord{
				companionCase("06-24-00001-CR", "John Alan Smith", false),
			},
		},
		{
			desc: "Matching name only as a state party",
			corpus: []model.CaseRecord{{
				CaseID:  "PD-0001-24",
				Parties: []model.Party{{Name: "John A. Smith", RoleType: "State", IsStateParty: true}},
			}},
		},
		{
			desc:   "Conflicting middle initial",
			corpus: []model.CaseRecord{companionCase("PD-0456-24", "Smith, John B.", false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			d := c.Classify(&rec, tt.corpus)
			if !d.Eligible {
				t.Errorf("Expected eligible, got %q (%s)", d.Reason, d.Detail)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := newClassifier(t, nil)
	rec := eligibleCase()
	corpus := []model.CaseRecord{
		companionCase("PD-0456-24", "Smith, John A.", false),
		companionCase("PD-0457-24", "Garcia, Maria", false),
	}

	first := c.Classify(&rec, corpus)
	second := c.Classify(&rec, corpus)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("classification changed between runs (-first +second):\n%s", diff)
	}

	other := newClassifier(t, nil)
	third := other.Classify(&rec, corpus)
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("classification changed between classifiers (-first +third):\n%s", diff)
	}
}

func TestClassify_NearMissLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newClassifier(t, nil, WithLogger(zap.New(core)))

	rec := eligibleCase()
	rec.Parties[0].Name = "Smith, Jon"
	corpus := []model.CaseRecord{companionCase("PD-0456-24", "John Smith", false)}

	d := c.Classify(&rec, corpus)
	require.True(t, d.Eligible)

	entries := logs.FilterMessage("Companion name near miss").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "PD-0456-24", fields["companion_case"])
	assert.Equal(t, "Smith, Jon", fields["party"])
}

func TestClassify_NoNearMissAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newClassifier(t, nil, WithLogger(zap.New(core)))

	rec := eligibleCase()
	rec.Parties[0].Name = "Smith, Jon"
	c.Classify(&rec, []model.CaseRecord{companionCase("PD-0456-24", "John Smith", false)})

	assert.Equal(t, 0, logs.Len())
}

func TestNew_Errors(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Classifier.JudgmentPolicy = "sometimes"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = model.DefaultConfig()
	cfg.Docket.AppellatePattern = "(["
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = model.DefaultConfig()
	cfg.Classifier.Timezone = "Texas/Nowhere"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCompanionIndex(t *testing.T) {
	c := newClassifier(t, nil)
	corpus := []model.CaseRecord{
		companionCase("PD-0001-24", "Smith, John", false),
		companionCase("PD-0002-24", "Jones, Mary", true),
		companionCase("05-24-00001-CR", "Garcia, Ana", false),
	}

	idx := NewCompanionIndex(c.Rules(), corpus)
	assert.Equal(t, 1, idx.Len())
}
