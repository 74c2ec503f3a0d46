package sources

// Config describes one configured idea source: an RSS/Atom feed of
// business-idea write-ups pulled on a schedule and fed to ingestion.
type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Defaults ConfigDefaults `yaml:"defaults"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"` // seconds
}

// ConfigDefaults are applied to every candidate the source produces
// unless the feed item carries its own value.
type ConfigDefaults struct {
	Sector        string   `yaml:"sector"`
	TargetUser    string   `yaml:"target_user"`
	BusinessModel string   `yaml:"business_model"`
	Tags          []string `yaml:"tags"`
}
