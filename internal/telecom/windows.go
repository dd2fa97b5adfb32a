package telecom

import "time"

// LookbackWindow maps an activity time-range token to a lookback
// duration. The second return is false only for "all", which disables
// time filtering; unrecognized or empty tokens get the 24-hour default.
func LookbackWindow(token string) (time.Duration, bool) {
	switch token {
	case "all":
		return 0, false
	case "hour":
		return time.Hour, true
	case "24hours":
		return 24 * time.Hour, true
	case "week":
		return 7 * 24 * time.Hour, true
	case "month":
		return 30 * 24 * time.Hour, true
	default:
		return 24 * time.Hour, true
	}
}

// ThreatLookback maps a threat time-range token to a lookback duration.
// Threat views default to the last hour, not the activity default.
func ThreatLookback(token string) time.Duration {
	switch token {
	case "6hours":
		return 6 * time.Hour
	case "24hours":
		return 24 * time.Hour
	case "week":
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}
