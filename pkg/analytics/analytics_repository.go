package analytics

import (
	"context"
	"farmket/domain"
	"time"

	"github.com/jmoiron/sqlx"
)

// revenueStatuses are the order states counted as earned revenue.
const revenueStatuses = `('processing', 'shipped', 'delivered')`

type (
	AnalyticsRepository interface {
		UserStats(ctx context.Context, today time.Time) (domain.UserStats, error)
		ProductStats(ctx context.Context) (domain.ProductStats, error)
		OrderStats(ctx context.Context) (domain.OrderStats, error)
		MessageStats(ctx context.Context, today time.Time) (domain.MessageStats, error)
		RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error)
		RecentUsers(ctx context.Context, limit int) ([]domain.RecentUser, error)
		TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error)
		CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
		TopFarmers(ctx context.Context, limit int) ([]domain.TopFarmer, error)
		StatusDistribution(ctx context.Context) ([]domain.StatusCount, error)
		DailyRevenue(ctx context.Context, since time.Time) ([]domain.DailyAmount, error)
		DailySignups(ctx context.Context, since time.Time) ([]domain.DailyAmount, error)
		DailyOrders(ctx context.Context, since time.Time) ([]domain.DailyAmount, error)
	}

	analyticsRepository struct {
		db *sqlx.DB
	}
)

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) UserStats(ctx context.Context, today time.Time) (domain.UserStats, error) {
	var stats domain.UserStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE user_type = 'farmer') AS farmers,
			COUNT(*) FILTER (WHERE user_type = 'buyer') AS buyers,
			COUNT(*) FILTER (WHERE created_at >= $1) AS new_today
		FROM users`
	err := r.db.GetContext(ctx, &stats, query, today)
	return stats, err
}

func (r *analyticsRepository) ProductStats(ctx context.Context) (domain.ProductStats, error) {
	var stats domain.ProductStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_available) AS available,
			COUNT(*) FILTER (WHERE is_organic) AS organic,
			COUNT(*) FILTER (WHERE stock_quantity <= 0) AS out_of_stock
		FROM products`
	err := r.db.GetContext(ctx, &stats, query)
	return stats, err
}

func (r *analyticsRepository) OrderStats(ctx context.Context) (domain.OrderStats, error) {
	var stats domain.OrderStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ` + revenueStatuses + `), 0) AS revenue
		FROM orders`
	err := r.db.GetContext(ctx, &stats, query)
	return stats, err
}

func (r *analyticsRepository) MessageStats(ctx context.Context, today time.Time) (domain.MessageStats, error) {
	var stats domain.MessageStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE created_at >= $1) AS today
		FROM messages`
	err := r.db.GetContext(ctx, &stats, query, today)
	return stats, err
}

func (r *analyticsRepository) RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error) {
	orders := []domain.RecentOrder{}
	query := `
		SELECT o.id, o.order_number, u.username AS buyer_name, o.status, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		ORDER BY o.created_at DESC
		LIMIT $1`
	err := r.db.SelectContext(ctx, &orders, query, limit)
	return orders, err
}

func (r *analyticsRepository) RecentUsers(ctx context.Context, limit int) ([]domain.RecentUser, error) {
	users := []domain.RecentUser{}
	query := `
		SELECT id, username, user_type, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1`
	err := r.db.SelectContext(ctx, &users, query, limit)
	return users, err
}

func (r *analyticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	products := []domain.TopProduct{}
	query := `
		SELECT
			p.id, p.name, p.slug,
			COUNT(oi.id) AS sales_count,
			COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM products p
		JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id, p.name, p.slug
		ORDER BY sales_count DESC, revenue DESC
		LIMIT $1`
	err := r.db.SelectContext(ctx, &products, query, limit)
	return products, err
}

func (r *analyticsRepository) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	counts := []domain.CategoryCount{}
	query := `
		SELECT c.name, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY product_count DESC, c.name ASC`
	err := r.db.SelectContext(ctx, &counts, query)
	return counts, err
}

func (r *analyticsRepository) TopFarmers(ctx context.Context, limit int) ([]domain.TopFarmer, error) {
	farmers := []domain.TopFarmer{}
	query := `
		SELECT u.id, u.username, COALESCE(fp.farm_name, '') AS farm_name, COUNT(oi.id) AS order_count
		FROM users u
		JOIN order_items oi ON oi.farmer_id = u.id
		LEFT JOIN farmer_profiles fp ON fp.user_id = u.id
		WHERE u.user_type = 'farmer'
		GROUP BY u.id, u.username, fp.farm_name
		ORDER BY order_count DESC
		LIMIT $1`
	err := r.db.SelectContext(ctx, &farmers, query, limit)
	return farmers, err
}

func (r *analyticsRepository) StatusDistribution(ctx context.Context) ([]domain.StatusCount, error) {
	counts := []domain.StatusCount{}
	query := `
		SELECT status, COUNT(*) AS count
		FROM orders
		GROUP BY status
		ORDER BY count DESC`
	err := r.db.SelectContext(ctx, &counts, query)
	return counts, err
}

func (r *analyticsRepository) DailyRevenue(ctx context.Context, since time.Time) ([]domain.DailyAmount, error) {
	return r.daily(ctx, `
		SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM orders
		WHERE created_at >= $1 AND status IN `+revenueStatuses+`
		GROUP BY day
		ORDER BY day`, since)
}

func (r *analyticsRepository) DailySignups(ctx context.Context, since time.Time) ([]domain.DailyAmount, error) {
	return r.daily(ctx, `
		SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count, 0 AS amount
		FROM users
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`, since)
}

func (r *analyticsRepository) DailyOrders(ctx context.Context, since time.Time) ([]domain.DailyAmount, error) {
	return r.daily(ctx, `
		SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`, since)
}

func (r *analyticsRepository) daily(ctx context.Context, query string, since time.Time) ([]domain.DailyAmount, error) {
	rows := []domain.DailyAmount{}
	err := r.db.SelectContext(ctx, &rows, query, since)
	return rows, err
}
