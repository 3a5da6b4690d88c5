package model

import "runtime"

// Config is the complete docketsift configuration
type Config struct {
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Docket      DocketConfig      `mapstructure:"docket" yaml:"docket"`
	Classifier  ClassifierConfig  `mapstructure:"classifier" yaml:"classifier"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// StoreConfig selects where case records persist between runs
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "json" or "sqlite"
	Path   string `mapstructure:"path" yaml:"path"`
}

// DocketConfig holds the jurisdiction's docket-number and party conventions
type DocketConfig struct {
	AppellatePattern  string   `mapstructure:"appellate_pattern" yaml:"appellate_pattern"`
	CompanionPrefixes []string `mapstructure:"companion_prefixes" yaml:"companion_prefixes"`
	StatePartyMarkers []string `mapstructure:"state_party_markers" yaml:"state_party_markers"` // Substring match on name or role
	StateRoles        []string `mapstructure:"state_roles" yaml:"state_roles"`                 // Exact role match
	JudgmentMarkers   []string `mapstructure:"judgment_markers" yaml:"judgment_markers"`
	OpinionEvents     []string `mapstructure:"opinion_events" yaml:"opinion_events"`
	FinalityKeywords  []string `mapstructure:"finality_keywords" yaml:"finality_keywords"`
}

// ClassifierConfig tunes the eligibility rules
type ClassifierConfig struct {
	StaleAfterDays    int      `mapstructure:"stale_after_days" yaml:"stale_after_days"`
	JudgmentPolicy    string   `mapstructure:"judgment_policy" yaml:"judgment_policy"` // "fail_closed" or "fail_open"
	NoMeritMarkers    []string `mapstructure:"no_merit_markers" yaml:"no_merit_markers"`
	NearMissThreshold float64  `mapstructure:"near_miss_threshold" yaml:"near_miss_threshold"`
	Timezone          string   `mapstructure:"timezone" yaml:"timezone"` // IANA zone the courts keep their calendars in
}

// ConcurrencyConfig bounds parallel classification
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose     bool   `mapstructure:"verbose" yaml:"verbose"`
	HandoffPath string `mapstructure:"handoff_path" yaml:"handoff_path"` // Eligible records for downstream steps
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

const (
	JudgmentFailClosed = "fail_closed"
	JudgmentFailOpen   = "fail_open"
)

// DefaultConfig returns the Texas courts defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "json",
			Path:   "data/cases.json",
		},
		Docket: DocketConfig{
			AppellatePattern:  `^(0[1-9]|1[0-4])-\d{2}-\d{5}-(CR|CV)$`,
			CompanionPrefixes: []string{"PD-"},
			StatePartyMarkers: []string{"state of texas"},
			StateRoles:        []string{"State", "State of Texas"},
			JudgmentMarkers:   []string{"judgment", "memorandum opinion"},
			OpinionEvents:     []string{"opinion", "decision"},
			FinalityKeywords:  []string{"affirmed", "reversed", "dismissed", "final"},
		},
		Classifier: ClassifierConfig{
			StaleAfterDays:    365,
			JudgmentPolicy:    JudgmentFailClosed,
			NoMeritMarkers:    []string{"anders"},
			NearMissThreshold: 0.92,
			Timezone:          "America/Chicago",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			HandoffPath: "data/eligible.json",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
