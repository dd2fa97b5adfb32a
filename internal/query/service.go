package query

import (
	"context"
	"sort"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

// ThreatFilter narrows the threat listing.
type ThreatFilter struct {
	Severity string
	Type     string
	Limit    int
	Since    time.Time
	Until    time.Time
}

// LiveStore is the production activity/threat store, normally backed by
// PostgreSQL. A zero Since disables the lower time bound.
type LiveStore interface {
	ListActivities(ctx context.Context, userID string, limit int, since, until time.Time) ([]telecom.Activity, error)
	ListFraudActivities(ctx context.Context, userID string, since, until time.Time) ([]telecom.Activity, error)
	Stats(ctx context.Context, since, until time.Time) (*telecom.ActivityStats, error)
	ListThreats(ctx context.Context, filter ThreatFilter) ([]telecom.Threat, error)
}

// Service answers activity queries from whichever source is active:
// the imported CSV batch when the selector is csv and a batch exists,
// otherwise the live store.
type Service struct {
	registry *datasource.Registry
	live     LiveStore
	now      func() time.Time
}

// NewService creates a query service over the registry and live store.
func NewService(registry *datasource.Registry, live LiveStore) *Service {
	return &Service{
		registry: registry,
		live:     live,
		now:      time.Now,
	}
}

// importedBatch returns the CSV batch when it should serve reads.
// A csv selector with an empty batch falls through to the live store.
func (s *Service) importedBatch() ([]telecom.Activity, bool) {
	if s.registry.CurrentSource() != datasource.SourceCSV {
		return nil, false
	}
	batch := s.registry.Batch()
	if len(batch) == 0 {
		return nil, false
	}
	return batch, true
}

// window resolves a time-range token against the current clock.
// A zero since means no lower bound.
func (s *Service) window(timeRange string) (since, until time.Time) {
	until = s.now()
	if d, bounded := telecom.LookbackWindow(timeRange); bounded {
		since = until.Add(-d)
	}
	return since, until
}

// ListActivities returns activities filtered by user, window and limit.
// Filters apply identically to both sources; boundaries are inclusive.
func (s *Service) ListActivities(ctx context.Context, userID string, limit int, timeRange string) ([]telecom.Activity, error) {
	since, until := s.window(timeRange)

	batch, ok := s.importedBatch()
	if !ok {
		return s.live.ListActivities(ctx, userID, limit, since, until)
	}

	out := filterActivities(batch, userID, since, until, false)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListFraudActivities returns only records flagged as spam or fraud.
func (s *Service) ListFraudActivities(ctx context.Context, userID string, timeRange string) ([]telecom.Activity, error) {
	since, until := s.window(timeRange)

	batch, ok := s.importedBatch()
	if !ok {
		return s.live.ListFraudActivities(ctx, userID, since, until)
	}
	return filterActivities(batch, userID, since, until, true), nil
}

// Stats aggregates the active source over the requested window.
func (s *Service) Stats(ctx context.Context, timeRange string) (*telecom.ActivityStats, error) {
	since, until := s.window(timeRange)

	batch, ok := s.importedBatch()
	if !ok {
		return s.live.Stats(ctx, since, until)
	}

	activities := filterActivities(batch, "", since, until, false)
	return aggregate(activities), nil
}

// ListThreats always reads the live store; imported CSV batches carry
// usage activity, not detected threats.
func (s *Service) ListThreats(ctx context.Context, severity, threatType, timeRange string, limit int) ([]telecom.Threat, error) {
	until := s.now()
	return s.live.ListThreats(ctx, ThreatFilter{
		Severity: severity,
		Type:     threatType,
		Limit:    limit,
		Since:    until.Add(-telecom.ThreatLookback(timeRange)),
		Until:    until,
	})
}

func filterActivities(batch []telecom.Activity, userID string, since, until time.Time, fraudOnly bool) []telecom.Activity {
	out := []telecom.Activity{}
	for _, a := range batch {
		if fraudOnly && !a.IsSpamOrFraud {
			continue
		}
		if userID != "" && a.UserID != userID {
			continue
		}
		if !since.IsZero() && a.Timestamp.Before(since) {
			continue
		}
		if a.Timestamp.After(until) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func aggregate(activities []telecom.Activity) *telecom.ActivityStats {
	stats := &telecom.ActivityStats{
		TotalActivities: len(activities),
		TopLocations:    []telecom.LocationCount{},
		NetworkUsage:    []telecom.NetworkCount{},
	}

	locationCounts := map[string]int{}
	locationOrder := []string{}
	networkCounts := map[string]int{}
	networkOrder := []string{}

	for _, a := range activities {
		switch a.ActivityType {
		case telecom.ActivityCall:
			stats.CallCount++
		case telecom.ActivitySMS:
			stats.SMSCount++
		case telecom.ActivityData:
			stats.DataCount++
		}
		if a.IsSpamOrFraud {
			stats.FraudCount++
		}

		if _, seen := locationCounts[a.Location]; !seen {
			locationOrder = append(locationOrder, a.Location)
		}
		locationCounts[a.Location]++

		if _, seen := networkCounts[a.NetworkType]; !seen {
			networkOrder = append(networkOrder, a.NetworkType)
		}
		networkCounts[a.NetworkType]++
	}

	if stats.TotalActivities > 0 {
		stats.FraudRate = float64(stats.FraudCount) / float64(stats.TotalActivities)
	}

	// Rank by count; first-seen order breaks ties so output is stable.
	for _, loc := range locationOrder {
		stats.TopLocations = append(stats.TopLocations, telecom.LocationCount{Location: loc, Count: locationCounts[loc]})
	}
	sort.SliceStable(stats.TopLocations, func(i, j int) bool {
		return stats.TopLocations[i].Count > stats.TopLocations[j].Count
	})
	if len(stats.TopLocations) > 5 {
		stats.TopLocations = stats.TopLocations[:5]
	}

	for _, n := range networkOrder {
		stats.NetworkUsage = append(stats.NetworkUsage, telecom.NetworkCount{Network: n, Count: networkCounts[n]})
	}

	return stats
}
