package market

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// ===== Browsing =====

type ListFilters struct {
	Query     string   `json:"q,omitempty"`
	Category  string   `json:"category,omitempty"`
	Condition string   `json:"condition,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	Sort      string   `json:"sort,omitempty"`
}

type ListResponse struct {
	Products   []Product   `json:"products"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	TotalCount int         `json:"total_count"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
	Filters    ListFilters `json:"filters"`
}

// parseListParams reads the browse filters off the query string. Values
// that do not parse, and unknown categories or conditions, are dropped
// rather than rejected so a mangled link still renders the listing.
func parseListParams(c echo.Context) ListParams {
	p := ListParams{
		Query: c.QueryParam("q"),
		Sort:  c.QueryParam("sort"),
		Page:  1,
	}
	if cat := c.QueryParam("category"); ValidCategory(cat) {
		p.Category = cat
	}
	if cond := c.QueryParam("condition"); ValidCondition(cond) {
		p.Condition = cond
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil && v >= 0 {
		p.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil && v >= 0 {
		p.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		p.Page = v
	}
	return p
}

// List is the main search and browse endpoint: filters, sorting and a
// fixed-size page window over every available product.
func List(c echo.Context) error {
	params := parseListParams(c)
	where, args := buildFilter(params)
	ctx := context.Background()

	var totalCount int
	err := db.Conn.QueryRow(ctx, "SELECT COUNT(*) FROM products pr "+where, args...).Scan(&totalCount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not count products"})
	}

	totalPages := totalPagesFor(totalCount)
	page := clampPage(params.Page, totalPages)

	args = append(args, pageSize, (page-1)*pageSize)
	n := len(args)
	query := `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		` + where + `
		ORDER BY ` + orderClause(params.Sort) + `
		LIMIT $` + strconv.Itoa(n-1) + ` OFFSET $` + strconv.Itoa(n)

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
	}
	products, err := collectProducts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read products"})
	}

	return c.JSON(http.StatusOK, ListResponse{
		Products:   products,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: totalCount,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
		Filters: ListFilters{
			Query:     params.Query,
			Category:  params.Category,
			Condition: params.Condition,
			MinPrice:  params.MinPrice,
			MaxPrice:  params.MaxPrice,
			Sort:      params.Sort,
		},
	})
}

// Home returns the landing page data: the newest listings plus the category
// index the client renders as browse links.
func Home(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(), `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		WHERE pr.is_available = TRUE
		ORDER BY pr.created_at DESC
		LIMIT 8
	`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
	}
	products, err := collectProducts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read products"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"recent":     products,
		"categories": Categories,
	})
}

// Mine lists the caller's own products, sold and hidden ones included, so
// sellers can manage their full inventory.
func Mine(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := db.Conn.Query(context.Background(), `
		SELECT pr.id, pr.seller_id, u.username, pr.name, pr.description, pr.price,
		       pr.category, pr.condition, COALESCE(pr.image_url, ''), pr.is_available,
		       pr.views_count, pr.created_at, pr.updated_at
		FROM products pr
		JOIN users u ON u.id = pr.seller_id
		WHERE pr.seller_id = $1
		ORDER BY pr.created_at DESC
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
	}
	products, err := collectProducts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read products"})
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.SellerID, &p.SellerUsername, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Condition, &p.ImageURL, &p.IsAvailable,
			&p.ViewsCount, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
