package market

import "fmt"

const pageSize = 12

// ListParams carries the browse filters after parsing. Invalid values are
// dropped during parsing, so the builder can trust what it receives.
type ListParams struct {
	Query     string
	Category  string
	Condition string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string
	Page      int
}

// buildFilter assembles the WHERE clause for the product list. Only
// available products are ever shown on the public listing.
func buildFilter(p ListParams) (string, []any) {
	where := "WHERE pr.is_available = TRUE"
	args := []any{}

	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (pr.name ILIKE $%d OR pr.description ILIKE $%d)", n, n)
	}
	if p.Category != "" {
		args = append(args, p.Category)
		where += fmt.Sprintf(" AND pr.category = $%d", len(args))
	}
	if p.Condition != "" {
		args = append(args, p.Condition)
		where += fmt.Sprintf(" AND pr.condition = $%d", len(args))
	}
	if p.MinPrice != nil {
		args = append(args, *p.MinPrice)
		where += fmt.Sprintf(" AND pr.price >= $%d", len(args))
	}
	if p.MaxPrice != nil {
		args = append(args, *p.MaxPrice)
		where += fmt.Sprintf(" AND pr.price <= $%d", len(args))
	}

	return where, args
}

// orderClause maps a sort key to its ORDER BY expression. Unknown keys fall
// back to newest first, the same as no sort at all.
func orderClause(sort string) string {
	switch sort {
	case "price_low":
		return "pr.price ASC"
	case "price_high":
		return "pr.price DESC"
	case "popular":
		return "pr.views_count DESC"
	default:
		return "pr.created_at DESC"
	}
}

// clampPage pins an out-of-range page onto the valid range instead of
// returning an error or an empty page in the middle of a result set.
func clampPage(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// totalPagesFor is ceil(totalCount / pageSize), with at least one page so
// the empty result still renders as page 1 of 1.
func totalPagesFor(totalCount int) int {
	if totalCount == 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}
