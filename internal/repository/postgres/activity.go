package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ritikraj007/FraudDetectionAI/internal/query"
	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

// ActivityRepo implements query.LiveStore against PostgreSQL.
type ActivityRepo struct{ db *sql.DB }

// NewActivityRepo creates a Postgres-backed activity store.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

const activityColumns = `id, user_id, activity_type, timestamp, duration_sec,
	       location, network_type, peer_number, is_roaming, is_spam_or_fraud,
	       data_usage_mb, cost, source`

func (r *ActivityRepo) ListActivities(ctx context.Context, userID string, limit int, since, until time.Time) ([]telecom.Activity, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT ` + activityColumns + ` FROM telecom_activities WHERE timestamp <= $1`
	args := []interface{}{until}
	idx := 2

	if !since.IsZero() {
		q += fmt.Sprintf(" AND timestamp >= $%d", idx)
		args = append(args, since)
		idx++
	}
	if userID != "" {
		q += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, userID)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", idx)
	args = append(args, limit)

	return r.queryActivities(ctx, q, args...)
}

func (r *ActivityRepo) ListFraudActivities(ctx context.Context, userID string, since, until time.Time) ([]telecom.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM telecom_activities
		WHERE is_spam_or_fraud = true AND timestamp <= $1`
	args := []interface{}{until}
	idx := 2

	if !since.IsZero() {
		q += fmt.Sprintf(" AND timestamp >= $%d", idx)
		args = append(args, since)
		idx++
	}
	if userID != "" {
		q += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, userID)
	}
	q += " ORDER BY timestamp DESC"

	return r.queryActivities(ctx, q, args...)
}

func (r *ActivityRepo) queryActivities(ctx context.Context, q string, args ...interface{}) ([]telecom.Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []telecom.Activity{}
	for rows.Next() {
		var a telecom.Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ActivityType, &a.Timestamp, &a.DurationSec,
			&a.Location, &a.NetworkType, &a.PeerNumber, &a.IsRoaming, &a.IsSpamOrFraud,
			&a.DataUsageMB, &a.Cost, &a.Source,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Stats aggregates activity counts in SQL so the window never has to be
// materialized in memory.
func (r *ActivityRepo) Stats(ctx context.Context, since, until time.Time) (*telecom.ActivityStats, error) {
	timeCond := "timestamp <= $1"
	args := []interface{}{until}
	if !since.IsZero() {
		timeCond += " AND timestamp >= $2"
		args = append(args, since)
	}

	stats := &telecom.ActivityStats{
		TopLocations: []telecom.LocationCount{},
		NetworkUsage: []telecom.NetworkCount{},
	}

	countQ := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE activity_type = 'call'),
		       COUNT(*) FILTER (WHERE activity_type = 'sms'),
		       COUNT(*) FILTER (WHERE activity_type = 'data'),
		       COUNT(*) FILTER (WHERE is_spam_or_fraud)
		FROM telecom_activities WHERE ` + timeCond
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(
		&stats.TotalActivities, &stats.CallCount, &stats.SMSCount, &stats.DataCount, &stats.FraudCount,
	); err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	if stats.TotalActivities > 0 {
		stats.FraudRate = float64(stats.FraudCount) / float64(stats.TotalActivities)
	}

	locQ := `
		SELECT location, COUNT(*) FROM telecom_activities
		WHERE ` + timeCond + `
		GROUP BY location ORDER BY COUNT(*) DESC, MIN(timestamp) ASC LIMIT 5`
	rows, err := r.db.QueryContext(ctx, locQ, args...)
	if err != nil {
		return nil, fmt.Errorf("top locations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lc telecom.LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		stats.TopLocations = append(stats.TopLocations, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	netQ := `
		SELECT network_type, COUNT(*) FROM telecom_activities
		WHERE ` + timeCond + `
		GROUP BY network_type ORDER BY MIN(timestamp) ASC`
	netRows, err := r.db.QueryContext(ctx, netQ, args...)
	if err != nil {
		return nil, fmt.Errorf("network usage: %w", err)
	}
	defer netRows.Close()
	for netRows.Next() {
		var nc telecom.NetworkCount
		if err := netRows.Scan(&nc.Network, &nc.Count); err != nil {
			return nil, fmt.Errorf("scan network: %w", err)
		}
		stats.NetworkUsage = append(stats.NetworkUsage, nc)
	}
	return stats, netRows.Err()
}

func (r *ActivityRepo) ListThreats(ctx context.Context, f query.ThreatFilter) ([]telecom.Threat, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	q := `
		SELECT id, threat_type, source, severity, ai_score, status, description, timestamp
		FROM threats WHERE timestamp >= $1 AND timestamp <= $2`
	args := []interface{}{f.Since, f.Until}
	idx := 3

	if f.Severity != "" {
		q += fmt.Sprintf(" AND severity = $%d", idx)
		args = append(args, f.Severity)
		idx++
	}
	if f.Type != "" {
		q += fmt.Sprintf(" AND threat_type = $%d", idx)
		args = append(args, f.Type)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list threats: %w", err)
	}
	defer rows.Close()

	out := []telecom.Threat{}
	for rows.Next() {
		var t telecom.Threat
		if err := rows.Scan(
			&t.ID, &t.ThreatType, &t.Source, &t.Severity,
			&t.AIScore, &t.Status, &t.Description, &t.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan threat: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateActivity inserts one live activity row, assigning a UUID when
// the caller does not supply an ID.
func (r *ActivityRepo) CreateActivity(ctx context.Context, a *telecom.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telecom_activities (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, a.ID, a.UserID, a.ActivityType, a.Timestamp, a.DurationSec,
		a.Location, a.NetworkType, a.PeerNumber, a.IsRoaming, a.IsSpamOrFraud,
		a.DataUsageMB, a.Cost, a.Source)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}
