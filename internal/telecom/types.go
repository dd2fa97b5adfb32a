package telecom

import "time"

// ActivityType classifies a usage event.
type ActivityType string

const (
	ActivityCall ActivityType = "call"
	ActivitySMS  ActivityType = "sms"
	ActivityData ActivityType = "data"
)

// Activity is the canonical, normalized representation of one ingested
// usage event. Every field has a total default, so a well-formed but
// incomplete source row always produces a complete record.
type Activity struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	ActivityType  ActivityType `json:"activityType"`
	Timestamp     time.Time    `json:"timestamp"`
	DurationSec   int          `json:"durationSec"`
	Location      string       `json:"location"`
	NetworkType   string       `json:"networkType"`
	PeerNumber    string       `json:"peerNumber"`
	IsRoaming     bool         `json:"isRoaming"`
	IsSpamOrFraud bool         `json:"isSpamOrFraud"`
	DataUsageMB   float64      `json:"dataUsageMB"`
	Cost          float64      `json:"cost"`
	Source        string       `json:"source"`
}

// LocationCount is one entry of the top-locations ranking.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// NetworkCount is the activity count for one network type.
type NetworkCount struct {
	Network string `json:"network"`
	Count   int    `json:"count"`
}

// ActivityStats summarizes activity over a time window.
type ActivityStats struct {
	TotalActivities int             `json:"totalActivities"`
	CallCount       int             `json:"callCount"`
	SMSCount        int             `json:"smsCount"`
	DataCount       int             `json:"dataCount"`
	FraudCount      int             `json:"fraudCount"`
	FraudRate       float64         `json:"fraudRate"`
	TopLocations    []LocationCount `json:"topLocations"`
	NetworkUsage    []NetworkCount  `json:"networkUsage"`
}

// Threat is a detected security event held in the live store. It is read
// by the threats listing and the CSV export; detection itself happens
// outside this service.
type Threat struct {
	ID          string    `json:"id"`
	ThreatType  string    `json:"threatType"`
	Source      string    `json:"source"`
	Severity    string    `json:"severity"`
	AIScore     float64   `json:"aiScore"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
