package constants

import "time"

const (
	AppName            = "apptbook"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/apptbook/apptbook.db"
	Version            = "v0.1.0"

	// Environment variables
	EnvConfig       = "APPTBOOK_CONFIG"
	EnvDebug        = "APPTBOOK_DEBUG"
	EnvDBConnection = "APPTBOOK_DB_CONNECTION"
	EnvTestPostgres = "APPTBOOK_TEST_POSTGRES"

	// DateFormat is the date format accepted on input (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DisplayDateFormat is the date format on the details screen (dd/MM/yyyy)
	DisplayDateFormat = "02/01/2006"

	// TimeFormat is the time-of-day format (HH:MM)
	TimeFormat = "15:04"

	// DefaultTime is used when no time is supplied for a new appointment
	DefaultTime = "10:00"

	// Appointment status values
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "apptbook-"
	BackupFileSuffix = ".db"

	// Change feed
	ChangeChannel      = "apptbook_appointments"
	DataVersionPoll    = 2 * time.Second
	ListenerMinBackoff = 10 * time.Second
	ListenerMaxBackoff = time.Minute
)
