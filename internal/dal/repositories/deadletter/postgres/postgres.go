package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ordermanager/oms/internal/dal/postgres"
	"github.com/ordermanager/oms/internal/service/models/deadletter"
)

// DeadLetterRepository persists dead-lettered messages for manual
// inspection.
type DeadLetterRepository struct {
	conn postgres.Querier
}

// NewDeadLetterRepository creates a new dead letter repository.
func NewDeadLetterRepository(conn postgres.Querier) *DeadLetterRepository {
	return &DeadLetterRepository{
		conn: conn,
	}
}

// Insert captures a dead-lettered message.
func (r *DeadLetterRepository) Insert(ctx context.Context, rec deadletter.Record) error {
	query, args, err := sq.Insert("dead_letters").
		Columns(
			"event_kind",
			"queue_name",
			"exchange_name",
			"payload",
			"failure_count",
			"last_error",
			"created_at",
		).
		Values(
			rec.EventKind,
			rec.QueueName,
			rec.ExchangeName,
			rec.Payload,
			rec.FailureCount,
			rec.LastError,
			rec.CreatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert dead letter: %w", err)
	}

	return nil
}

// List retrieves captured messages, newest first.
func (r *DeadLetterRepository) List(ctx context.Context, limit int) ([]deadletter.Record, error) {
	query, args, err := sq.Select(
		"id",
		"event_kind",
		"queue_name",
		"exchange_name",
		"payload",
		"failure_count",
		"last_error",
		"created_at",
	).
		From("dead_letters").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dead letters: %w", err)
	}
	defer rows.Close()

	var records []deadletter.Record
	for rows.Next() {
		var rec deadletter.Record
		err := rows.Scan(
			&rec.ID,
			&rec.EventKind,
			&rec.QueueName,
			&rec.ExchangeName,
			&rec.Payload,
			&rec.FailureCount,
			&rec.LastError,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dead letter: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dead letters: %w", err)
	}

	return records, nil
}
