package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmket/domain"
	"farmket/pkg/analytics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAnalyticsRepository struct {
	failOn  string
	revenue []domain.DailyAmount
	signups []domain.DailyAmount
	orders  []domain.DailyAmount
}

func (r *fakeAnalyticsRepository) fail(name string) error {
	if r.failOn == name {
		return errors.New("boom")
	}
	return nil
}

func (r *fakeAnalyticsRepository) UserStats(context.Context, time.Time) (domain.UserStats, error) {
	return domain.UserStats{Total: 3, Farmers: 1, Buyers: 2}, r.fail("users")
}

func (r *fakeAnalyticsRepository) ProductStats(context.Context) (domain.ProductStats, error) {
	return domain.ProductStats{Total: 4, Available: 3}, r.fail("products")
}

func (r *fakeAnalyticsRepository) OrderStats(context.Context) (domain.OrderStats, error) {
	return domain.OrderStats{Total: 2, Revenue: decimal.RequireFromString("12.50")}, r.fail("orders")
}

func (r *fakeAnalyticsRepository) MessageStats(context.Context, time.Time) (domain.MessageStats, error) {
	return domain.MessageStats{Total: 9, Today: 1}, nil
}

func (r *fakeAnalyticsRepository) RecentOrders(_ context.Context, limit int) ([]domain.RecentOrder, error) {
	return make([]domain.RecentOrder, min(limit, 2)), nil
}

func (r *fakeAnalyticsRepository) RecentUsers(_ context.Context, limit int) ([]domain.RecentUser, error) {
	return make([]domain.RecentUser, min(limit, 3)), nil
}

func (r *fakeAnalyticsRepository) TopProducts(_ context.Context, limit int) ([]domain.TopProduct, error) {
	return make([]domain.TopProduct, limit), nil
}

func (r *fakeAnalyticsRepository) CategoryCounts(context.Context) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Name: "Vegetables", ProductCount: 4}}, nil
}

func (r *fakeAnalyticsRepository) TopFarmers(_ context.Context, limit int) ([]domain.TopFarmer, error) {
	return make([]domain.TopFarmer, limit), nil
}

func (r *fakeAnalyticsRepository) StatusDistribution(context.Context) ([]domain.StatusCount, error) {
	return []domain.StatusCount{{Status: "pending", Count: 2}}, nil
}

func (r *fakeAnalyticsRepository) DailyRevenue(context.Context, time.Time) ([]domain.DailyAmount, error) {
	return r.revenue, nil
}

func (r *fakeAnalyticsRepository) DailySignups(context.Context, time.Time) ([]domain.DailyAmount, error) {
	return r.signups, nil
}

func (r *fakeAnalyticsRepository) DailyOrders(context.Context, time.Time) ([]domain.DailyAmount, error) {
	return r.orders, nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBucketizeDaily(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC)
	rows := []domain.DailyAmount{
		{Day: day("2026-03-31"), Count: 2, Amount: decimal.RequireFromString("10")},
		{Day: day("2026-03-29"), Count: 1, Amount: decimal.RequireFromString("5")},
		{Day: day("2026-03-28"), Count: 7, Amount: decimal.RequireFromString("99")},
		{Day: day("2026-03-31"), Count: 1, Amount: decimal.RequireFromString("2.5")},
	}

	buckets := analytics.Bucketize(rows, now, 3, 1, time.DateOnly)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"2026-03-29", "2026-03-30", "2026-03-31"}, []string{buckets[0].Label, buckets[1].Label, buckets[2].Label})
	assert.Equal(t, []int64{1, 0, 3}, []int64{buckets[0].Count, buckets[1].Count, buckets[2].Count})
	assert.True(t, decimal.RequireFromString("5").Equal(buckets[0].Amount))
	assert.True(t, buckets[1].Amount.IsZero())
	assert.True(t, decimal.RequireFromString("12.5").Equal(buckets[2].Amount))
}

func TestBucketizeThirtyDayPeriods(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)
	rows := []domain.DailyAmount{
		{Day: day("2026-02-15"), Count: 1, Amount: decimal.RequireFromString("20")},
		{Day: day("2026-03-20"), Count: 2, Amount: decimal.RequireFromString("30")},
		{Day: day("2025-12-01"), Count: 5, Amount: decimal.RequireFromString("50")},
	}

	buckets := analytics.Bucketize(rows, now, 2, 30, "Jan 2006")
	require.Len(t, buckets, 2)
	assert.Equal(t, day("2026-01-31"), buckets[0].Start)
	assert.Equal(t, buckets[0].End, buckets[1].Start)
	assert.Equal(t, day("2026-04-01"), buckets[1].End)
	assert.Equal(t, "Jan 2026", buckets[0].Label)
	assert.Equal(t, "Mar 2026", buckets[1].Label)
	assert.EqualValues(t, 1, buckets[0].Count)
	assert.EqualValues(t, 2, buckets[1].Count)
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	today := time.Now()
	repo := &fakeAnalyticsRepository{
		revenue: []domain.DailyAmount{
			{Day: today, Count: 1, Amount: decimal.RequireFromString("7.5")},
			{Day: today.AddDate(0, 0, -45), Count: 1, Amount: decimal.RequireFromString("5")},
		},
	}
	service := analytics.NewAnalyticsService(repo, zap.NewNop())

	res, err := service.Dashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Users.Total)
	assert.EqualValues(t, 9, res.Messages.Total)
	assert.Len(t, res.TopProducts, 5)
	assert.Len(t, res.TopFarmers, 5)
	assert.Len(t, res.RecentUsers, 3)
	require.Len(t, res.MonthlyRevenue, 6)
	assert.True(t, decimal.RequireFromString("7.5").Equal(res.MonthlyRevenue[5].Amount))
	assert.True(t, decimal.RequireFromString("5").Equal(res.MonthlyRevenue[4].Amount))

	repo.failOn = "orders"
	_, err = service.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestReports(t *testing.T) {
	t.Parallel()

	repo := &fakeAnalyticsRepository{
		signups: []domain.DailyAmount{{Day: time.Now(), Count: 4}},
		orders:  []domain.DailyAmount{{Day: time.Now(), Count: 2, Amount: decimal.RequireFromString("3")}},
	}
	service := analytics.NewAnalyticsService(repo, zap.NewNop())
	ctx := context.Background()

	users, err := service.UsersAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, users.Growth, 12)
	assert.EqualValues(t, 4, users.Growth[11].Count)

	products, err := service.ProductsAnalytics(ctx)
	require.NoError(t, err)
	assert.Len(t, products.TopProducts, 20)

	orders, err := service.OrdersAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, orders.Daily, 30)
	assert.EqualValues(t, 2, orders.Daily[29].Count)
	assert.Equal(t, "pending", orders.StatusDistribution[0].Status)
}
