package vfs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	vfsRepo "arbor/internal/domain/repositories/vfs"
	"arbor/internal/repository/postgres"
)

// nodeColumns is the full column list in scan order.
const nodeColumns = `id, namespace_key, owner_id, parent_path, filename,
	is_directory, is_public, ordinal, content, content_type, size,
	created_at, modified_at`

// metaColumns omits the payload for listings and tree building.
const metaColumns = `id, namespace_key, owner_id, parent_path, filename,
	is_directory, is_public, ordinal, '' AS content, content_type, size,
	created_at, modified_at`

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) vfsRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// visibility builds the read-visibility predicate for the viewer.
// Administrators see everything; everyone else sees owned or public nodes.
func visibility(viewer models.Viewer, argIndex int) (string, []interface{}) {
	if viewer.Admin {
		return "TRUE", nil
	}
	return fmt.Sprintf("(owner_id = $%d OR is_public)", argIndex), []interface{}{viewer.UserID}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*models.Node, error) {
	var n models.Node
	err := row.Scan(
		&n.ID,
		&n.NamespaceKey,
		&n.OwnerID,
		&n.ParentPath,
		&n.Filename,
		&n.IsDirectory,
		&n.IsPublic,
		&n.Ordinal,
		&n.Content,
		&n.ContentType,
		&n.Size,
		&n.CreatedAt,
		&n.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetByName retrieves one node by its parent path and leaf name
func (r *PostgresNodeRepository) GetByName(ctx context.Context, ns string, viewer models.Viewer, parentPath, filename string) (*models.Node, error) {
	vis, visArgs := visibility(viewer, 4)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE namespace_key = $1 AND parent_path = $2 AND filename = $3 AND %s
	`, nodeColumns, r.tables.Nodes, vis)
	args := append([]interface{}{ns, parentPath, filename}, visArgs...)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %q: %w", models.JoinPath(parentPath, filename), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node by name: %w", err)
	}
	return node, nil
}

// GetByID retrieves one node by its stable identifier
func (r *PostgresNodeRepository) GetByID(ctx context.Context, viewer models.Viewer, id string) (*models.Node, error) {
	vis, visArgs := visibility(viewer, 2)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND %s
	`, nodeColumns, r.tables.Nodes, vis)
	args := append([]interface{}{id}, visArgs...)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// ListChildren lists direct children of a directory ordered by ordinal ascending
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, ns string, viewer models.Viewer, parentPath string, includeContent bool) ([]models.Node, error) {
	columns := metaColumns
	if includeContent {
		columns = nodeColumns
	}
	vis, visArgs := visibility(viewer, 3)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE namespace_key = $1 AND parent_path = $2 AND %s
		ORDER BY ordinal ASC
	`, columns, r.tables.Nodes, vis)
	args := append([]interface{}{ns, parentPath}, visArgs...)

	return r.queryNodes(ctx, query, args...)
}

// ListAll lists every visible node of the namespace, metadata only
func (r *PostgresNodeRepository) ListAll(ctx context.Context, ns string, viewer models.Viewer) ([]models.Node, error) {
	vis, visArgs := visibility(viewer, 2)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE namespace_key = $1 AND %s
		ORDER BY parent_path ASC, ordinal ASC
	`, metaColumns, r.tables.Nodes, vis)
	args := append([]interface{}{ns}, visArgs...)

	return r.queryNodes(ctx, query, args...)
}

// CountChildren counts direct children regardless of visibility
func (r *PostgresNodeRepository) CountChildren(ctx context.Context, ns, parentPath string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE namespace_key = $1 AND parent_path = $2
	`, r.tables.Nodes)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ns, parentPath).Scan(&count); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// Create inserts a new node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, namespace_key, owner_id, parent_path, filename,
			is_directory, is_public, ordinal, content, content_type, size,
			created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		node.ID,
		node.NamespaceKey,
		node.OwnerID,
		node.ParentPath,
		node.Filename,
		node.IsDirectory,
		node.IsPublic,
		node.Ordinal,
		node.Content,
		node.ContentType,
		node.Size,
		node.CreatedAt,
		node.ModifiedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("node %q already exists in this location", node.Filename),
				ResourceType: nodeKind(node),
				ResourceID:   node.ID,
			}
		}
		return fmt.Errorf("create node: %w", err)
	}
	return nil
}

// UpdateContent rewrites a node's payload in place
func (r *PostgresNodeRepository) UpdateContent(ctx context.Context, id, content, contentType string, size int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, content_type = $2, size = $3, modified_at = $4
		WHERE id = $5
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, content, contentType, size, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateLocation rewrites a node's parent path, leaf name and ordinal
func (r *PostgresNodeRepository) UpdateLocation(ctx context.Context, id, parentPath, filename string, ordinal int32) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_path = $1, filename = $2, ordinal = $3, modified_at = $4
		WHERE id = $5
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentPath, filename, ordinal, time.Now(), id)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("node %q already exists in this location", filename),
				ResourceType: "node",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("update location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a single node
func (r *PostgresNodeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresNodeRepository) queryNodes(ctx context.Context, query string, args ...interface{}) ([]models.Node, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	// Return empty slice instead of nil
	if nodes == nil {
		nodes = []models.Node{}
	}
	return nodes, nil
}

func nodeKind(n *models.Node) string {
	if n.IsDirectory {
		return "directory"
	}
	return "file"
}
