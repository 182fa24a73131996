package optname

const (
	Directory     = "directory"
	LoggingLevel  = "log-level"
	ShutdownGrace = "shutdown-grace"
	Verbose       = "verbose"
)
