package restream

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Event is an upcoming Restream event. Never persisted.
type Event struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ScheduledFor int64  `json:"scheduledFor"`
}

// StreamKeyRecord joins an event with its fetched stream key.
type StreamKeyRecord struct {
	Key   string
	Title string
	Date  time.Time
}

// KeyPolicy decides what happens when a single event's key fetch fails.
type KeyPolicy int

const (
	// FailFast aborts the whole aggregation on the first failed key fetch.
	FailFast KeyPolicy = iota
	// BestEffort keeps going and reports the skipped events explicitly.
	BestEffort
)

// SkippedEvent records an event whose key could not be fetched under the
// BestEffort policy.
type SkippedEvent struct {
	ID    string
	Title string
	Err   error
}

// KeyReport is the aggregation result: records sorted by date descending
// plus any events skipped under BestEffort.
type KeyReport struct {
	Records []StreamKeyRecord
	Skipped []SkippedEvent
}

type streamKeyResponse struct {
	StreamKey string `json:"streamKey"`
}

// ListUpcoming returns the provider's upcoming events verbatim.
func (c *Client) ListUpcoming(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, "/v2/user/events/upcoming", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// StreamKey fetches the secret stream key for one event.
func (c *Client) StreamKey(ctx context.Context, eventID string) (string, error) {
	var resp streamKeyResponse
	path := fmt.Sprintf("/v2/user/events/%s/streamKey", eventID)
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.StreamKey, nil
}

// FetchKeys lists upcoming events and fetches each one's stream key,
// sequentially and in list order. Each fetch goes through the resilient
// client independently, so each may trigger its own refresh-and-retry.
// Results are sorted most-recent-first; ties keep list order.
func (c *Client) FetchKeys(ctx context.Context, policy KeyPolicy) (*KeyReport, error) {
	events, err := c.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	report := &KeyReport{}
	for _, ev := range events {
		key, err := c.StreamKey(ctx, ev.ID)
		if err != nil {
			if policy == FailFast {
				return nil, fmt.Errorf("fetching stream key for event %s (%s): %w", ev.ID, ev.Title, err)
			}
			c.logger.Warn().Str("event_id", ev.ID).Str("title", ev.Title).Err(err).
				Msg("skipping event, stream key fetch failed")
			report.Skipped = append(report.Skipped, SkippedEvent{ID: ev.ID, Title: ev.Title, Err: err})
			continue
		}
		report.Records = append(report.Records, StreamKeyRecord{
			Key:   key,
			Title: ev.Title,
			Date:  time.Unix(ev.ScheduledFor, 0),
		})
	}

	sort.SliceStable(report.Records, func(i, j int) bool {
		return report.Records[i].Date.After(report.Records[j].Date)
	})
	return report, nil
}
