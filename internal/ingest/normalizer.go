package ingest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

// Normalize maps one raw CSV row onto the canonical activity record.
// Each field is resolved through an ordered alias chain; the first
// non-empty value wins, and a total default applies when none is set.
// Returns false when the row cannot be transformed at all, in which
// case the row is dropped rather than partially emitted.
func Normalize(row map[string]string) (rec *telecom.Activity, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok = nil, false
		}
	}()

	id := pick(row, "id")
	if id == "" {
		id = newRecordID()
	}

	rec = &telecom.Activity{
		ID:            id,
		UserID:        pickDefault(row, "unknown", "user_id", "userId", "phone_number", "phoneNumber"),
		ActivityType:  inferActivityType(pick(row, "activity_type", "type", "call_type")),
		Timestamp:     resolveRowTimestamp(row),
		DurationSec:   parseCount(pick(row, "duration", "duration_sec", "call_duration")),
		Location:      pickDefault(row, "Unknown", "location", "city", "region"),
		NetworkType:   pickDefault(row, "4G", "network_type", "network"),
		PeerNumber:    pickDefault(row, "unknown", "peer_number", "called_number", "recipient"),
		IsRoaming:     parseFlag(pick(row, "is_roaming", "roaming")),
		IsSpamOrFraud: parseFlag(pick(row, "is_spam", "is_fraud", "spam", "fraud")),
		DataUsageMB:   parseAmount(pick(row, "data_usage", "data_mb")),
		Cost:          parseAmount(pick(row, "cost", "charge")),
		Source:        "csv_import",
	}
	return rec, true
}

func resolveRowTimestamp(row map[string]string) time.Time {
	raw := pick(row, "timestamp", "date", "call_date")
	if raw == "" {
		return time.Now()
	}
	return ResolveTimestamp(raw)
}

// pick returns the first non-empty value among the named columns.
func pick(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

func pickDefault(row map[string]string, def string, keys ...string) string {
	if v := pick(row, keys...); v != "" {
		return v
	}
	return def
}

func inferActivityType(raw string) telecom.ActivityType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "call"), normalized == "voice":
		return telecom.ActivityCall
	case strings.Contains(normalized, "sms"), normalized == "text":
		return telecom.ActivitySMS
	case strings.Contains(normalized, "data"), normalized == "internet":
		return telecom.ActivityData
	default:
		return telecom.ActivityCall
	}
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// parseCount reads a non-negative integer; garbage and negatives
// collapse to 0.
func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseAmount(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRecordID generates an import-scoped record ID. The csv_ prefix
// marks records that did not come from the live store.
func newRecordID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}
	return fmt.Sprintf("csv_%d_%s", time.Now().UnixMilli(), suffix)
}
