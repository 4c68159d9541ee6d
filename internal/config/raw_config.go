package config

// RawConfig represents unparsed YAML structure
type RawConfig struct {
	Server   RawServerConfig   `yaml:"server"`
	Sampling RawSamplingConfig `yaml:"sampling"`
	Log      RawLogConfig      `yaml:"log"`
	Export   RawExportConfig   `yaml:"export"`
	Settings RawSettingsConfig `yaml:"settings"`
}

// RawServerConfig defines the scrape endpoint
type RawServerConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// RawSamplingConfig defines the host sampling cadence
type RawSamplingConfig struct {
	Interval RawDuration `yaml:"interval"`
}

// RawLogConfig defines log verbosity
type RawLogConfig struct {
	Level string `yaml:"level"`
}
