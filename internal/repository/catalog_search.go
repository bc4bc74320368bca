package repository

import (
	"context"
	"strings"
)

// CatalogSearchQuery defines filters & pagination for searching the catalog.
type CatalogSearchQuery struct {
	Title    string
	Author   string
	Kind     string
	Page     int
	PageSize int
}

type CatalogSearchRow struct {
	ID              uint64  `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Kind            string  `json:"kind"`
	Status          string  `json:"status"`
	AvailableCopies uint32  `json:"available_copies"`
	UnitPriceCents  uint32  `json:"unit_price_cents"`
	Price           float64 `json:"price"`
}

// Search returns a page of catalog items matching the filters plus the
// total match count.  Disabled items are excluded; guests should not
// discover titles that were pulled from circulation.
func (r *CatalogRepo) Search(ctx context.Context, q CatalogSearchQuery) ([]CatalogSearchRow, int64, error) {
	where := []string{"i.status <> 'DISABLED'"}
	args := []any{}

	if q.Title != "" {
		where = append(where, "LOWER(i.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Author != "" {
		where = append(where, "LOWER(i.author) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Author)+"%")
	}
	if q.Kind != "" {
		where = append(where, "i.kind = ?")
		args = append(args, strings.ToUpper(q.Kind))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*) FROM catalog_items i WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			i.id,
			i.title,
			i.author,
			i.kind,
			i.status,
			COALESCE(i.available_copies, 0),
			COALESCE(i.unit_price_cents, 0)
		FROM catalog_items i
		WHERE ` + cond + `
		ORDER BY i.title ASC, i.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CatalogSearchRow, 0, limit)
	for rows.Next() {
		var d CatalogSearchRow
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Author,
			&d.Kind,
			&d.Status,
			&d.AvailableCopies,
			&d.UnitPriceCents,
		); err != nil {
			return nil, 0, err
		}
		d.Price = float64(d.UnitPriceCents) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
