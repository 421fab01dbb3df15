package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/stockroom-ims/stockroom/internal/platform/db"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Builder returns a squirrel builder using PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ApplyFilters adds the WHERE clauses of f to q. alias prefixes column names
// when the listing joins other tables.
func ApplyFilters(q squirrel.SelectBuilder, alias string, f ListFilters) squirrel.SelectBuilder {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{col("name"): SearchPattern(f.Search)})
	}
	if active := f.IsActive(); active != nil {
		q = q.Where(squirrel.Eq{col("is_active"): *active})
	}
	if f.CategoryID != "" {
		q = q.Where(squirrel.Eq{col("category_id"): f.CategoryID})
	}
	if f.SupplierID != "" {
		q = q.Where(squirrel.Eq{col("supplier_id"): f.SupplierID})
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern builds a substring ILIKE pattern with wildcards in the
// search text escaped.
func SearchPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}

// NameTaken reports whether table holds a row whose name equals name
// ignoring case, other than the row excludeID.
func NameTaken(ctx context.Context, q db.Querier, table, name, excludeID string) (bool, error) {
	inner := Builder().Select("1").From(table).Where("lower(name) = lower(?)", name)
	if excludeID != "" {
		inner = inner.Where(squirrel.NotEq{"id": excludeID})
	}
	sql, args, err := inner.ToSql()
	if err != nil {
		return false, fmt.Errorf("build name check: %w", err)
	}
	var taken bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("%s name check: %w", table, err)
	}
	return taken, nil
}

// ParseID validates a route id. Malformed ids resolve to ErrNotFound.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", internalShared.ErrNotFound
	}
	return id.String(), nil
}
