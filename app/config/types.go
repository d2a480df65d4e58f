package config

// Source kinds supported by the listing fetcher.
const (
	KindSite = "site"
	KindFeed = "feed"
)

// Upsert policies. PolicyUpdate refreshes mutable metrics on every poll,
// PolicySkip leaves already-tracked articles untouched.
const (
	PolicyUpdate = "update"
	PolicySkip   = "skip"
)

type Source struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Kind     string         `yaml:"kind"`
	Settings SourceSettings `yaml:"settings"`
}

type SourceSettings struct {
	Enabled          bool   `yaml:"enabled"`
	Pages            int    `yaml:"pages"`              // page budget per poll cycle
	PollInterval     int    `yaml:"poll_interval"`      // seconds
	Timeout          int    `yaml:"timeout"`            // seconds, per request
	MinContentLength int    `yaml:"min_content_length"` // characters of extracted text
	PolitenessDelay  int    `yaml:"politeness_delay"`   // milliseconds between page requests
	UpsertPolicy     string `yaml:"upsert_policy"`      // "update" or "skip"
}
