package log

// Config controls the process logger.
type Config struct {
	Level   string      `mapstructure:"level" yaml:"level"`
	Pattern string      `mapstructure:"pattern" yaml:"pattern"`
	Time    string      `mapstructure:"time" yaml:"time"`
	File    *FileOutput `mapstructure:"file" yaml:"file,omitempty"`
}

// FileOutput configures the rotating file appender.
type FileOutput struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`       // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // files
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`         // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// DefaultConfig is console-only info-level logging.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Pattern: "%time [%level] %field%msg\n",
		Time:    "2006-01-02 15:04:05",
	}
}
