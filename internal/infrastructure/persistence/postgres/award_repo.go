package postgres

import (
	"context"
	"fmt"

	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD REPOSITORY
// The achievement ledger. The (member_id, code) primary key plus ON CONFLICT
// DO NOTHING gives Award its idempotence.
// ══════════════════════════════════════════════════════════════════════════════

// AwardRepository implements achievement.Ledger on PostgreSQL.
type AwardRepository struct {
	conn *Connection
}

// NewAwardRepository creates a new AwardRepository.
func NewAwardRepository(conn *Connection) *AwardRepository {
	return &AwardRepository{conn: conn}
}

// Award grants the achievement; repeating a grant is a no-op.
func (r *AwardRepository) Award(ctx context.Context, id member.ID, code string) error {
	const query = `
		INSERT INTO awards (member_id, code)
		VALUES ($1, $2)
		ON CONFLICT (member_id, code) DO NOTHING
	`

	if _, err := r.conn.Exec(ctx, query, id.Int64(), code); err != nil {
		return shared.WrapError("achievement", "Award", err, fmt.Sprintf("award %q to member %d", code, id.Int64()))
	}
	return nil
}

// Has reports whether the member holds the achievement.
func (r *AwardRepository) Has(ctx context.Context, id member.ID, code string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM awards WHERE member_id = $1 AND code = $2
		)
	`

	var held bool
	if err := r.conn.QueryRow(ctx, query, id.Int64(), code).Scan(&held); err != nil {
		return false, shared.WrapError("achievement", "Has", err, fmt.Sprintf("award %q for member %d", code, id.Int64()))
	}
	return held, nil
}

// ListByMember returns the member's achievement codes in grant order.
func (r *AwardRepository) ListByMember(ctx context.Context, id member.ID) ([]string, error) {
	const query = `
		SELECT code
		FROM awards
		WHERE member_id = $1
		ORDER BY awarded_at, code
	`

	rows, err := r.conn.Query(ctx, query, id.Int64())
	if err != nil {
		return nil, shared.WrapError("achievement", "ListByMember", err, fmt.Sprintf("member %d", id.Int64()))
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, shared.WrapError("achievement", "ListByMember", err, "scan award")
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
