package constants

const (
	FieldTerminator         = '|'
	FieldQuote              = '"'
	LineTerminator          = "\n"
	FileExtensionPsv        = ".psv"
	TimeFormatFileDate      = "20060102"             // date suffix of output file names
	TimeFormatYearSeconds   = "20060102T150405"      // used for human readable file names
	TimeFormatYearSecondsTZ = "20060102T150405-0700" // a format that includes the time zone.
	TimeFormatFieldValue    = "2006-01-02 15:04:05"  // used to render date-time field values in output files.
	MinDatasetRowsDefault   = 2                      // a result set smaller than this is treated as empty.
	ParallelismDefault      = 1
	ServiceName             = "psvexport"
	EnvVarPrefix            = "PX" // prefixed for environment variables in twelveFactorMode
	EnvVarOutputDir         = EnvVarPrefix + "_OUTPUT_DIR"
	EnvVarLogDir            = EnvVarPrefix + "_LOG_DIR"
	EmptyResultPolicySkip   = "skip"
	EmptyResultPolicyHalt   = "halt"
	EmojiBang               = "\U0001F4A5"
	EmojiTick               = "\u2705"
	EmojiRunning            = "\u23F3"
	ConnectionTypeSqlServer = "sqlserver"
	ConnectionTypeNetezza   = "netezza"
	ConnectionTypeSnowflake = "snowflake"
	ConnectionTypePostgres  = "postgres"
	ConnectionTypeMySql     = "mysql"
	ConnectionTypeSqlite    = "sqlite"
)
