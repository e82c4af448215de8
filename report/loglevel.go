package report

// ParseLogLevel maps a config/CLI string onto one of the enumerated log
// levels above. Returns false for anything it doesn't recognize, leaving
// the decision of whether that's fatal to the caller.
func ParseLogLevel(s string) (int, bool) {
	switch s {
	case "silent":
		return LogLevelSilent, true
	case "error":
		return LogLevelError, true
	case "warn":
		return LogLevelWarn, true
	case "verbose":
		return LogLevelVerbose, true
	default:
		return 0, false
	}
}
