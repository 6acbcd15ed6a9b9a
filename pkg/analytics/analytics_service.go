package analytics

import (
	"context"
	"farmket/domain"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentLimit          = 10
	dashboardTopProducts = 5
	dashboardTopFarmers  = 5
	reportTopProducts    = 20

	monthDays        = 30
	revenueMonths    = 6
	userGrowthMonths = 12
	dailyOrderDays   = 30

	monthLayout = "Jan 2006"
	dayLayout   = time.DateOnly
)

type (
	AnalyticsService interface {
		Dashboard(ctx context.Context) (domain.DashboardResponse, error)
		UsersAnalytics(ctx context.Context) (domain.UsersAnalyticsResponse, error)
		ProductsAnalytics(ctx context.Context) (domain.ProductsAnalyticsResponse, error)
		OrdersAnalytics(ctx context.Context) (domain.OrdersAnalyticsResponse, error)
	}

	analyticsService struct {
		analyticsRepository AnalyticsRepository
		logger              *zap.Logger
		now                 func() time.Time
	}
)

func NewAnalyticsService(analyticsRepository AnalyticsRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		analyticsRepository: analyticsRepository,
		logger:              logger,
		now:                 time.Now,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (domain.DashboardResponse, error) {
	var res domain.DashboardResponse
	now := s.now()
	today := startOfDay(now)
	since := periodStart(now, revenueMonths, monthDays)

	var revenue []domain.DailyAmount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { res.Users, err = s.analyticsRepository.UserStats(gctx, today); return })
	g.Go(func() (err error) { res.Products, err = s.analyticsRepository.ProductStats(gctx); return })
	g.Go(func() (err error) { res.Orders, err = s.analyticsRepository.OrderStats(gctx); return })
	g.Go(func() (err error) { res.Messages, err = s.analyticsRepository.MessageStats(gctx, today); return })
	g.Go(func() (err error) { res.RecentOrders, err = s.analyticsRepository.RecentOrders(gctx, recentLimit); return })
	g.Go(func() (err error) { res.RecentUsers, err = s.analyticsRepository.RecentUsers(gctx, recentLimit); return })
	g.Go(func() (err error) {
		res.TopProducts, err = s.analyticsRepository.TopProducts(gctx, dashboardTopProducts)
		return
	})
	g.Go(func() (err error) { res.Categories, err = s.analyticsRepository.CategoryCounts(gctx); return })
	g.Go(func() (err error) {
		res.TopFarmers, err = s.analyticsRepository.TopFarmers(gctx, dashboardTopFarmers)
		return
	})
	g.Go(func() (err error) { revenue, err = s.analyticsRepository.DailyRevenue(gctx, since); return })
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		return domain.DashboardResponse{}, err
	}

	res.MonthlyRevenue = Bucketize(revenue, now, revenueMonths, monthDays, monthLayout)
	return res, nil
}

func (s *analyticsService) UsersAnalytics(ctx context.Context) (domain.UsersAnalyticsResponse, error) {
	now := s.now()

	signups, err := s.analyticsRepository.DailySignups(ctx, periodStart(now, userGrowthMonths, monthDays))
	if err != nil {
		return domain.UsersAnalyticsResponse{}, err
	}
	stats, err := s.analyticsRepository.UserStats(ctx, startOfDay(now))
	if err != nil {
		return domain.UsersAnalyticsResponse{}, err
	}

	return domain.UsersAnalyticsResponse{
		Growth: Bucketize(signups, now, userGrowthMonths, monthDays, monthLayout),
		Stats:  stats,
	}, nil
}

func (s *analyticsService) ProductsAnalytics(ctx context.Context) (domain.ProductsAnalyticsResponse, error) {
	top, err := s.analyticsRepository.TopProducts(ctx, reportTopProducts)
	if err != nil {
		return domain.ProductsAnalyticsResponse{}, err
	}
	stats, err := s.analyticsRepository.ProductStats(ctx)
	if err != nil {
		return domain.ProductsAnalyticsResponse{}, err
	}
	return domain.ProductsAnalyticsResponse{TopProducts: top, Stats: stats}, nil
}

func (s *analyticsService) OrdersAnalytics(ctx context.Context) (domain.OrdersAnalyticsResponse, error) {
	now := s.now()

	distribution, err := s.analyticsRepository.StatusDistribution(ctx)
	if err != nil {
		return domain.OrdersAnalyticsResponse{}, err
	}
	daily, err := s.analyticsRepository.DailyOrders(ctx, periodStart(now, dailyOrderDays, 1))
	if err != nil {
		return domain.OrdersAnalyticsResponse{}, err
	}
	stats, err := s.analyticsRepository.OrderStats(ctx)
	if err != nil {
		return domain.OrdersAnalyticsResponse{}, err
	}

	return domain.OrdersAnalyticsResponse{
		StatusDistribution: distribution,
		Daily:              Bucketize(daily, now, dailyOrderDays, 1, dayLayout),
		Stats:              stats,
	}, nil
}

// Bucketize folds daily rows into count consecutive buckets of widthDays
// each, the last one ending with the day of now. Rows outside the window
// are dropped. Buckets come back oldest first.
func Bucketize(rows []domain.DailyAmount, now time.Time, count, widthDays int, layout string) []domain.PeriodBucket {
	end := startOfDay(now).AddDate(0, 0, 1)
	buckets := make([]domain.PeriodBucket, count)
	for i := range buckets {
		start := end.AddDate(0, 0, -(count-i)*widthDays)
		buckets[i] = domain.PeriodBucket{
			Label:  start.Format(layout),
			Start:  start,
			End:    start.AddDate(0, 0, widthDays),
			Amount: decimal.Zero,
		}
	}

	for _, row := range rows {
		day := startOfDay(row.Day.In(now.Location()))
		for i := range buckets {
			if !day.Before(buckets[i].Start) && day.Before(buckets[i].End) {
				buckets[i].Count += row.Count
				buckets[i].Amount = buckets[i].Amount.Add(row.Amount)
				break
			}
		}
	}
	return buckets
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func periodStart(now time.Time, count, widthDays int) time.Time {
	return startOfDay(now).AddDate(0, 0, 1-count*widthDays)
}
