package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
	"github.com/ficben/achievebot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER REPOSITORY
// Counters and stored rank tiers live in one row per member; per-day
// activity is a separate upserted table keyed by (member_id, day).
// ══════════════════════════════════════════════════════════════════════════════

// MemberRepository implements member.Repository on PostgreSQL.
type MemberRepository struct {
	conn  *Connection
	clock member.Clock
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(conn *Connection) *MemberRepository {
	return &MemberRepository{conn: conn, clock: member.SystemClock()}
}

// NewMemberRepositoryWithClock creates a repository with a custom clock.
func NewMemberRepositoryWithClock(conn *Connection, clock member.Clock) *MemberRepository {
	return &MemberRepository{conn: conn, clock: clock}
}

// Register inserts the member if absent. A repeated call keeps the counters
// and refreshes the handle only when a non-empty one was supplied. New rows
// start at the sentinel tier of every track.
func (r *MemberRepository) Register(ctx context.Context, id member.ID, handle member.Handle) error {
	if !id.IsValid() {
		return member.ErrInvalidID
	}

	const query = `
		INSERT INTO members (id, handle, joined_at, rank_messages, rank_comments, rank_combined)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET handle = CASE WHEN EXCLUDED.handle <> '' THEN EXCLUDED.handle ELSE members.handle END
	`
	_, err := r.conn.Exec(ctx, query,
		id.Int64(),
		string(handle.Normalize()),
		r.clock.Now().UTC(),
		rank.SentinelMessages,
		rank.SentinelComments,
		rank.SentinelCombined,
	)
	if err != nil {
		return shared.WrapError("member", "Register", err, fmt.Sprintf("member %d", id.Int64()))
	}
	return nil
}

// GetByID loads the full member row.
func (r *MemberRepository) GetByID(ctx context.Context, id member.ID) (*member.Member, error) {
	const query = `
		SELECT id, handle, joined_at, messages, comments, books,
		       rank_messages, rank_comments, rank_combined
		FROM members
		WHERE id = $1
	`

	var m member.Member
	err := r.conn.QueryRow(ctx, query, id.Int64()).Scan(
		&m.ID,
		&m.Handle,
		&m.JoinedAt,
		&m.Messages,
		&m.Comments,
		&m.Books,
		&m.RankMessages,
		&m.RankComments,
		&m.RankCombined,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrNotRegistered
		}
		return nil, shared.WrapError("member", "GetByID", err, fmt.Sprintf("member %d", id.Int64()))
	}
	return &m, nil
}

// GetAll returns all members ordered by handle for the wizard list.
func (r *MemberRepository) GetAll(ctx context.Context) ([]member.ListEntry, error) {
	const query = `
		SELECT id, handle
		FROM members
		ORDER BY lower(handle), id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("member", "GetAll", err, "query members")
	}
	defer rows.Close()

	var entries []member.ListEntry
	for rows.Next() {
		var e member.ListEntry
		if err := rows.Scan(&e.ID, &e.Handle); err != nil {
			return nil, shared.WrapError("member", "GetAll", err, "scan member entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Increment bumps the lifetime counters and the per-day row in one
// transaction and returns the new totals. A comment counts as a message too.
func (r *MemberRepository) Increment(ctx context.Context, id member.ID, isComment bool) (int, int, error) {
	commentDelta := 0
	if isComment {
		commentDelta = 1
	}
	day := timeutil.StartOfDayUTC(r.clock.Now())

	var messages, comments int
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		const bump = `
			UPDATE members
			SET messages = messages + 1,
			    comments = comments + $2
			WHERE id = $1
			RETURNING messages, comments
		`
		if err := tx.QueryRow(ctx, bump, id.Int64(), commentDelta).Scan(&messages, &comments); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return member.ErrNotRegistered
			}
			return err
		}

		const upsertDay = `
			INSERT INTO daily_activity (member_id, day, messages, comments)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (member_id, day) DO UPDATE
			SET messages = daily_activity.messages + 1,
			    comments = daily_activity.comments + $3
		`
		_, err := tx.Exec(ctx, upsertDay, id.Int64(), day, commentDelta)
		return err
	})
	if err != nil {
		if errors.Is(err, member.ErrNotRegistered) {
			return 0, 0, member.ErrNotRegistered
		}
		return 0, 0, shared.WrapError("member", "Increment", err, fmt.Sprintf("member %d", id.Int64()))
	}
	return messages, comments, nil
}

// SetBooks overwrites the books counter.
func (r *MemberRepository) SetBooks(ctx context.Context, id member.ID, count int) error {
	if count < 0 {
		return member.ErrNegativeCount
	}

	tag, err := r.conn.Exec(ctx, `UPDATE members SET books = $2 WHERE id = $1`, id.Int64(), count)
	if err != nil {
		return shared.WrapError("member", "SetBooks", err, fmt.Sprintf("member %d", id.Int64()))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("member", "SetBooks", member.ErrNotRegistered, fmt.Sprintf("member %d", id.Int64()))
	}
	return nil
}

// UpdateRanks stores the three tier strings.
func (r *MemberRepository) UpdateRanks(ctx context.Context, id member.ID, messages, comments, combined string) error {
	const query = `
		UPDATE members
		SET rank_messages = $2,
		    rank_comments = $3,
		    rank_combined = $4
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query, id.Int64(), messages, comments, combined)
	if err != nil {
		return shared.WrapError("member", "UpdateRanks", err, fmt.Sprintf("member %d", id.Int64()))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("member", "UpdateRanks", member.ErrNotRegistered, fmt.Sprintf("member %d", id.Int64()))
	}
	return nil
}

// GetRecentActivity returns up to limit daily rows, most recent first. Days
// without activity have no row and are simply absent.
func (r *MemberRepository) GetRecentActivity(ctx context.Context, id member.ID, limit int) ([]member.DailyActivity, error) {
	const query = `
		SELECT member_id, day, messages, comments
		FROM daily_activity
		WHERE member_id = $1
		ORDER BY day DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, id.Int64(), limit)
	if err != nil {
		return nil, shared.WrapError("member", "GetRecentActivity", err, fmt.Sprintf("member %d", id.Int64()))
	}
	defer rows.Close()

	var days []member.DailyActivity
	for rows.Next() {
		var d member.DailyActivity
		if err := rows.Scan(&d.MemberID, &d.Day, &d.Messages, &d.Comments); err != nil {
			return nil, shared.WrapError("member", "GetRecentActivity", err, "scan daily activity")
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
