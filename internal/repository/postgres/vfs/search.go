package vfs

import (
	"context"
	"fmt"
	"strings"

	models "arbor/internal/domain/models/vfs"
)

// Search returns file nodes under the subtree whose content matches the
// options. Regex mode uses the case-sensitive ~ operator with the raw
// pattern; match-any/match-all build OR/AND chains of case-insensitive
// literal matches (terms arrive pre-quoted from the service layer).
func (r *PostgresNodeRepository) Search(ctx context.Context, ns string, viewer models.Viewer, opts *models.SearchOptions) ([]models.Node, error) {
	args := []interface{}{ns}
	next := 2

	var conditions []string
	switch opts.Mode {
	case models.SearchModeRegex:
		conditions = append(conditions, fmt.Sprintf("content ~ $%d", next))
		args = append(args, opts.Terms[0])
		next++
	case models.SearchModeMatchAny, models.SearchModeMatchAll:
		var termConds []string
		for _, term := range opts.Terms {
			termConds = append(termConds, fmt.Sprintf("content ~* $%d", next))
			args = append(args, term)
			next++
		}
		op := " OR "
		if opts.Mode == models.SearchModeMatchAll {
			op = " AND "
		}
		conditions = append(conditions, "("+strings.Join(termConds, op)+")")
	default:
		return nil, fmt.Errorf("unknown search mode: %q", opts.Mode)
	}

	// Subtree scope: "" means the whole namespace.
	if opts.SubtreePath != "" {
		conditions = append(conditions, fmt.Sprintf("(parent_path = $%d OR parent_path LIKE $%d)", next, next+1))
		args = append(args, opts.SubtreePath, likePrefix(opts.SubtreePath))
		next += 2
	}

	vis, visArgs := visibility(viewer, next)
	conditions = append(conditions, vis)
	args = append(args, visArgs...)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE namespace_key = $1
		  AND is_directory = FALSE
		  AND %s
		ORDER BY %s
	`, metaColumns, r.tables.Nodes, strings.Join(conditions, " AND "), orderClause(opts.Order))

	return r.queryNodes(ctx, query, args...)
}

func orderClause(order models.SearchOrder) string {
	switch order {
	case models.SearchOrderName:
		return "filename ASC, parent_path ASC"
	case models.SearchOrderCreated:
		return "created_at DESC"
	default:
		return "modified_at DESC"
	}
}
