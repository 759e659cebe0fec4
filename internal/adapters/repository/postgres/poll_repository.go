package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

const heatExpr = `(
	(SELECT COALESCE(SUM(jsonb_array_length(c->'voters')), 0) FROM jsonb_array_elements(document->'choices') AS c)
	+ jsonb_array_length(document->'comments')
)`

type PollRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPollRepository(db *sql.DB, timeout time.Duration) *PollRepository {
	return &PollRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, author_id, post_date, last_interaction_date, version, document
		FROM polls
		WHERE id = $1
	`
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}

func (r *PollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := json.Marshal(toDocument(poll))
	if err != nil {
		return fmt.Errorf("failed to encode poll: %w", err)
	}
	next := poll.Version + 1

	if poll.Version == 0 {
		query := `
			INSERT INTO polls (id, author_id, post_date, last_interaction_date, version, search_text, document)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`
		res, err := r.db.ExecContext(ctx, query,
			poll.ID, poll.AuthorID, poll.PostDate, poll.LastInteractionDate, next, searchText(poll), string(doc))
		if err != nil {
			return fmt.Errorf("failed to insert poll: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrVersionConflict
		}
		poll.Version = next
		return nil
	}

	query := `
		UPDATE polls
		SET last_interaction_date = $3, version = $4, search_text = $5, document = $6
		WHERE id = $1 AND version = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Version, poll.LastInteractionDate, next, searchText(poll), string(doc))
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1)`, poll.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check poll: %w", err)
		}
		if !exists {
			return domain.ErrPollNotFound
		}
		return domain.ErrVersionConflict
	}

	poll.Version = next
	return nil
}

func (r *PollRepository) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *PollRepository) Find(ctx context.Context, q ports.PollQuery) ([]*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
		tsq   string
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Text != "" {
		// any term may match, like the document store's text search
		tsq = "websearch_to_tsquery('english', " + arg(strings.Join(strings.Fields(q.Text), " or ")) + ")"
		where = append(where, "search @@ "+tsq)
	}
	if q.AuthorID != "" {
		where = append(where, "author_id = "+arg(q.AuthorID))
	}
	if !q.InteractedSince.IsZero() {
		where = append(where, "last_interaction_date >= "+arg(q.InteractedSince))
	}

	var order string
	switch {
	case q.Order == ports.OrderHeat:
		order = heatExpr + " DESC, post_date DESC, id ASC"
	case q.Order == ports.OrderRelevance && tsq != "":
		order = "ts_rank(search, " + tsq + ") DESC, post_date DESC, id ASC"
	default:
		order = "post_date DESC, id ASC"
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, author_id, post_date, last_interaction_date, version, document FROM polls")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY " + order)
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(q.Limit))
	}
	if q.Skip > 0 {
		sb.WriteString(" OFFSET " + arg(q.Skip))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPoll(row scanner) (*domain.Poll, error) {
	var (
		id, authorID              string
		postDate, lastInteraction time.Time
		version                   int64
		raw                       []byte
	)
	if err := row.Scan(&id, &authorID, &postDate, &lastInteraction, &version, &raw); err != nil {
		return nil, err
	}

	var doc pollDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode poll %s: %w", id, err)
	}
	return doc.toDomain(id, authorID, postDate, lastInteraction, version), nil
}
