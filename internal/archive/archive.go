// Package archive journals ledger events to Postgres for off-ledger
// monitoring. The ledger state is the source of truth; the journal is a
// best-effort record and must never block or fail a ledger operation.
package archive

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reliefd/internal/domain"
	"reliefd/internal/infra"
	"reliefd/internal/sqlinline"
)

// Record is one journaled event row.
type Record struct {
	ID           string           `json:"id"`
	Kind         domain.EventKind `json:"kind"`
	CampaignID   int64            `json:"campaign_id,omitempty"`
	RequestID    int64            `json:"request_id,omitempty"`
	Actor        string           `json:"actor"`
	AmountInt    int64            `json:"amount"`
	Name         string           `json:"name,omitempty"`
	Location     string           `json:"location,omitempty"`
	ResourceType string           `json:"resource,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// Archive consumes ledger events from a buffered channel and inserts them on
// its own goroutine. When the buffer is full, events are dropped with a
// warning rather than stalling the ledger.
type Archive struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
	events chan domain.Event
	done   chan struct{}
	titler cases.Caser
}

// New creates an archive writing through the given executor.
func New(sql infra.SQLExecutor, logger zerolog.Logger, buffer int) *Archive {
	if buffer <= 0 {
		buffer = 256
	}
	return &Archive{
		sql:    sql,
		logger: logger,
		events: make(chan domain.Event, buffer),
		done:   make(chan struct{}),
		titler: cases.Title(language.Und),
	}
}

// Publish enqueues an event without blocking. It satisfies ledger.EventSink.
func (a *Archive) Publish(ev domain.Event) {
	select {
	case a.events <- ev:
	default:
		a.logger.Warn().Str("kind", string(ev.Kind)).Msg("archive buffer full, event dropped")
	}
}

// Run drains the event channel until Close is called, then flushes what is
// left. It is meant to run on its own goroutine.
func (a *Archive) Run(ctx context.Context) {
	for {
		select {
		case <-a.done:
			for {
				select {
				case ev := <-a.events:
					a.insert(ctx, ev)
				default:
					return
				}
			}
		case ev := <-a.events:
			a.insert(ctx, ev)
		}
	}
}

// Close stops Run after the remaining buffered events are flushed.
func (a *Archive) Close() {
	close(a.done)
}

func (a *Archive) insert(ctx context.Context, ev domain.Event) {
	operation := func() (pgconn.CommandTag, error) {
		return a.sql.Exec(ctx, sqlinline.QInsertEvent,
			uuid.NewString(),
			string(ev.Kind),
			ev.CampaignID,
			ev.RequestID,
			ev.Actor,
			ev.AmountInt,
			ev.Name,
			ev.Location,
			a.titler.String(ev.ResourceType),
			ev.OccurredAt,
		)
	}
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(5),
	)
	if err != nil {
		a.logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("archive insert failed")
	}
}

// ListRecent returns the newest journaled events, most recent first.
func (a *Archive) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := a.sql.Query(ctx, sqlinline.QListRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Record
	for rows.Next() {
		var rec Record
		var kind string
		if err := rows.Scan(&rec.ID, &kind, &rec.CampaignID, &rec.RequestID, &rec.Actor, &rec.AmountInt, &rec.Name, &rec.Location, &rec.ResourceType, &rec.OccurredAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.EventKind(kind)
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
