package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessGetAnalytics = "analytics retrieved successfully"
	MessageFailedGetAnalytics  = "failed to retrieve analytics"
)

type (
	UserStats struct {
		Total    int64 `json:"total" db:"total"`
		Farmers  int64 `json:"farmers" db:"farmers"`
		Buyers   int64 `json:"buyers" db:"buyers"`
		NewToday int64 `json:"new_today" db:"new_today"`
	}

	ProductStats struct {
		Total      int64 `json:"total" db:"total"`
		Available  int64 `json:"available" db:"available"`
		Organic    int64 `json:"organic" db:"organic"`
		OutOfStock int64 `json:"out_of_stock" db:"out_of_stock"`
	}

	OrderStats struct {
		Total     int64           `json:"total" db:"total"`
		Pending   int64           `json:"pending" db:"pending"`
		Delivered int64           `json:"delivered" db:"delivered"`
		Revenue   decimal.Decimal `json:"revenue" db:"revenue"`
	}

	MessageStats struct {
		Total int64 `json:"total" db:"total"`
		Today int64 `json:"today" db:"today"`
	}

	RecentOrder struct {
		ID          string          `json:"id" db:"id"`
		OrderNumber string          `json:"order_number" db:"order_number"`
		BuyerName   string          `json:"buyer_name" db:"buyer_name"`
		Status      string          `json:"status" db:"status"`
		TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
		CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	}

	RecentUser struct {
		ID        string    `json:"id" db:"id"`
		Username  string    `json:"username" db:"username"`
		UserType  string    `json:"user_type" db:"user_type"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	TopProduct struct {
		ID         string          `json:"id" db:"id"`
		Name       string          `json:"name" db:"name"`
		Slug       string          `json:"slug" db:"slug"`
		SalesCount int64           `json:"sales_count" db:"sales_count"`
		Revenue    decimal.Decimal `json:"revenue" db:"revenue"`
	}

	CategoryCount struct {
		Name         string `json:"name" db:"name"`
		ProductCount int64  `json:"product_count" db:"product_count"`
	}

	TopFarmer struct {
		ID         string `json:"id" db:"id"`
		Username   string `json:"username" db:"username"`
		FarmName   string `json:"farm_name" db:"farm_name"`
		OrderCount int64  `json:"order_count" db:"order_count"`
	}

	// DailyAmount is one day of an aggregated series.
	DailyAmount struct {
		Day    time.Time       `json:"day" db:"day"`
		Count  int64           `json:"count" db:"count"`
		Amount decimal.Decimal `json:"amount" db:"amount"`
	}

	StatusCount struct {
		Status string `json:"status" db:"status"`
		Count  int64  `json:"count" db:"count"`
	}

	PeriodBucket struct {
		Label  string          `json:"label"`
		Start  time.Time       `json:"start"`
		End    time.Time       `json:"end"`
		Count  int64           `json:"count"`
		Amount decimal.Decimal `json:"amount"`
	}

	DashboardResponse struct {
		Users          UserStats       `json:"users"`
		Products       ProductStats    `json:"products"`
		Orders         OrderStats      `json:"orders"`
		Messages       MessageStats    `json:"messages"`
		RecentOrders   []RecentOrder   `json:"recent_orders"`
		RecentUsers    []RecentUser    `json:"recent_users"`
		TopProducts    []TopProduct    `json:"top_products"`
		Categories     []CategoryCount `json:"categories"`
		MonthlyRevenue []PeriodBucket  `json:"monthly_revenue"`
		TopFarmers     []TopFarmer     `json:"top_farmers"`
	}

	UsersAnalyticsResponse struct {
		Growth []PeriodBucket `json:"growth"`
		Stats  UserStats      `json:"stats"`
	}

	ProductsAnalyticsResponse struct {
		TopProducts []TopProduct `json:"top_products"`
		Stats       ProductStats `json:"stats"`
	}

	OrdersAnalyticsResponse struct {
		StatusDistribution []StatusCount  `json:"status_distribution"`
		Daily              []PeriodBucket `json:"daily"`
		Stats              OrderStats     `json:"stats"`
	}
)
