package vfs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arbor/internal/domain"
	"arbor/internal/repository/postgres"
)

// ReparentSubtree bulk-rewrites the parent_path prefix of every node whose
// parent_path is oldPrefix or lies underneath it. Descendants keep their
// filename, ordinal and identifier; only the path prefix changes.
func (r *PostgresNodeRepository) ReparentSubtree(ctx context.Context, ns, oldPrefix, newPrefix string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_path = $1 || substr(parent_path, $2), modified_at = $3
		WHERE namespace_key = $4
		  AND (parent_path = $5 OR parent_path LIKE $6)
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		newPrefix,
		len(oldPrefix)+1, // substr is 1-based: keep everything after the old prefix
		time.Now(),
		ns,
		oldPrefix,
		likePrefix(oldPrefix),
	)
	if err != nil {
		return 0, fmt.Errorf("reparent subtree: %w", err)
	}
	return result.RowsAffected(), nil
}

// SetPublic flips the visibility flag on one node
func (r *PostgresNodeRepository) SetPublic(ctx context.Context, id string, public bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_public = $1, modified_at = $2
		WHERE id = $3
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, public, time.Now(), id)
	if err != nil {
		return fmt.Errorf("set public: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetPublicSubtree flips the visibility flag on every node strictly under fullPath
func (r *PostgresNodeRepository) SetPublicSubtree(ctx context.Context, ns, fullPath string, public bool) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_public = $1, modified_at = $2
		WHERE namespace_key = $3
		  AND (parent_path = $4 OR parent_path LIKE $5)
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, public, time.Now(), ns, fullPath, likePrefix(fullPath))
	if err != nil {
		return 0, fmt.Errorf("set public subtree: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteSubtree removes every node strictly under fullPath
func (r *PostgresNodeRepository) DeleteSubtree(ctx context.Context, ns, fullPath string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE namespace_key = $1
		  AND (parent_path = $2 OR parent_path LIKE $3)
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ns, fullPath, likePrefix(fullPath))
	if err != nil {
		return 0, fmt.Errorf("delete subtree: %w", err)
	}
	return result.RowsAffected(), nil
}

// likePrefix builds the LIKE pattern matching paths strictly below prefix,
// escaping LIKE metacharacters in the prefix itself.
func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "/%"
}
