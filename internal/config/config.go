package config

// AgeBasis selects which file timestamp decides how old an entry is.
type AgeBasis string

const (
	// AgeCTime uses the platform creation time.
	AgeCTime AgeBasis = "ctime"
	// AgeMTime uses the modification time, for filesystems without a
	// meaningful creation time.
	AgeMTime AgeBasis = "mtime"
)

type Config struct {
	WorkDir    string          `yaml:"workDir" split_words:"true"`
	LogDir     string          `yaml:"logDir" split_words:"true"`
	ArchiveDir string          `yaml:"archiveDir" split_words:"true"`
	SourceDir  string          `yaml:"sourceDir" split_words:"true"`
	BackupDir  string          `yaml:"backupDir" split_words:"true"`
	Retention  RetentionConfig `yaml:"retention" split_words:"true"`
	AgeBasis   AgeBasis        `yaml:"ageBasis" split_words:"true"`
	Schedule   string          `yaml:"schedule" split_words:"true"` // cron expression of the external scheduler
	LockFile   string          `yaml:"lockFile" split_words:"true"` // relative to LogDir, empty disables
	Logging    LoggingConfig   `yaml:"logging" split_words:"true"`
}

// RetentionConfig holds the three retention windows, in days.
type RetentionConfig struct {
	LogDays     int `yaml:"logDays" split_words:"true"`
	ArchiveDays int `yaml:"archiveDays" split_words:"true"`
	BackupDays  int `yaml:"backupDays" split_words:"true"` // backup folder -> archive
}

type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format" split_words:"true"` // "json", "console"
}

// Defaults mirrors the layout the job has always used: everything lives
// next to each other in the working directory.
func Defaults() *Config {
	return &Config{
		LogDir:     "logs",
		ArchiveDir: "archive",
		SourceDir:  "minecraft-data",
		BackupDir:  "backup",
		Retention: RetentionConfig{
			LogDays:     20,
			ArchiveDays: 30,
			BackupDays:  10,
		},
		AgeBasis: AgeCTime,
		LockFile: ".mc-backup.lock",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
