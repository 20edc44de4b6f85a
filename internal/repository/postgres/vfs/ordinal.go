package vfs

import (
	"context"
	"fmt"
	"time"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	"arbor/internal/repository/postgres"
)

// Ordinals below this are sentinel/staging values, never at rest.
const minLiveOrdinal = models.MinOrdinal

// SetOrdinal updates a single node's ordinal
func (r *PostgresNodeRepository) SetOrdinal(ctx context.Context, id string, ordinal int32) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET ordinal = $1, modified_at = $2
		WHERE id = $3
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ordinal, time.Now(), id)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("ordinal %d already taken among siblings", ordinal),
				ResourceType: "node",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("set ordinal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// NextOrdinal returns max(ordinal)+1 over direct children (1 if none).
// Sentinel and staging placeholders are excluded so a node parked mid-move
// never drags the allocation down.
func (r *PostgresNodeRepository) NextOrdinal(ctx context.Context, ns, parentPath string) (int32, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(ordinal), 0)
		FROM %s
		WHERE namespace_key = $1 AND parent_path = $2 AND ordinal >= $3
	`, r.tables.Nodes)

	var max int32
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ns, parentPath, minLiveOrdinal).Scan(&max); err != nil {
		return 0, fmt.Errorf("next ordinal: %w", err)
	}
	return max + 1, nil
}

// ShiftOrdinals adds count to every direct child with ordinal >= from,
// opening a contiguous gap of count free values starting at from.
//
// The per-directory ordinal uniqueness index is checked per statement, so a
// single bulk UPDATE could collide with a not-yet-shifted sibling. Rows are
// therefore shifted one at a time in descending ordinal order: each row moves
// into space the previous iteration just vacated.
func (r *PostgresNodeRepository) ShiftOrdinals(ctx context.Context, ns, parentPath string, from, count int32) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("shift count must be positive, got %d: %w", count, domain.ErrValidation)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE namespace_key = $1 AND parent_path = $2 AND ordinal >= $3
		ORDER BY ordinal DESC
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, selectQuery, ns, parentPath, from)
	if err != nil {
		return nil, fmt.Errorf("select shift candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan shift candidate: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shift candidates: %w", err)
	}
	rows.Close()

	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET ordinal = ordinal + $1, modified_at = $2
		WHERE id = $3
	`, r.tables.Nodes)

	now := time.Now()
	for _, id := range ids {
		if _, err := executor.Exec(ctx, updateQuery, count, now, id); err != nil {
			return nil, fmt.Errorf("shift ordinal of %s: %w", id, err)
		}
	}
	return ids, nil
}
