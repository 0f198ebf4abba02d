package log

// LoggerConfig describes how the global Logger is constructed.
type LoggerConfig struct {
	Level     string           `mapstructure:"level"`
	Pattern   string           `mapstructure:"pattern"`
	Time      string           `mapstructure:"time"`
	Appenders []AppenderConfig `mapstructure:"appenders"`
	Formatter *FormatterConfig `mapstructure:"formatter,omitempty"`
}

// AppenderConfig describes one log output sink. Options is decoded into the
// appender-specific option struct (FileAppenderOpt, LokiConfig) by the
// matching appender constructor.
type AppenderConfig struct {
	Type    string                 `mapstructure:"type"` // console | file | loki
	Level   string                 `mapstructure:"level,omitempty"`
	Options map[string]interface{} `mapstructure:"options,omitempty"`
}

// FormatterConfig switches from the pattern formatter to logrus's built-in
// text formatter with the given options.
type FormatterConfig struct {
	EnableColors   bool `mapstructure:"enable_colors,omitempty"`
	FullTimestamp  bool `mapstructure:"full_timestamp,omitempty"`
	DisableSorting bool `mapstructure:"disable_sorting,omitempty"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:   "info",
		Pattern: "%time [%level] %caller: %msg %field",
		Time:    "2006-01-02 15:04:05",
		Appenders: []AppenderConfig{
			{Type: "console", Level: "info"},
		},
	}
}
