package domain

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

const ProductsPerPage = 12

var (
	MessageSuccessGetHome       = "home products retrieved successfully"
	MessageSuccessGetProducts   = "products retrieved successfully"
	MessageSuccessGetProduct    = "product retrieved successfully"
	MessageSuccessCreateProduct = "product created successfully"
	MessageSuccessUpdateProduct = "product updated successfully"
	MessageSuccessDeleteProduct = "product deleted successfully"
	MessageSuccessUploadImage   = "product image uploaded successfully"
	MessageSuccessAddReview     = "review added successfully"
	MessageSuccessGetCategories = "categories retrieved successfully"
	MessageFailedGetHome        = "failed to retrieve home products"
	MessageFailedGetProducts    = "failed to retrieve products"
	MessageFailedGetProduct     = "failed to retrieve product"
	MessageFailedCreateProduct  = "failed to create product"
	MessageFailedUpdateProduct  = "failed to update product"
	MessageFailedDeleteProduct  = "failed to delete product"
	MessageFailedUploadImage    = "failed to upload product image"
	MessageFailedAddReview      = "failed to add review"
	MessageFailedGetCategories  = "failed to retrieve categories"

	ErrProductNotFound    = errors.New("product not found")
	ErrProductNotOwned    = errors.New("product does not belong to this farmer")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInvalidHarvestDate = errors.New("harvest date must use YYYY-MM-DD")
	ErrProductHasOrders   = errors.New("product has orders and was unlisted instead of deleted")
)

// ProductSorts lists the accepted sort keys with their SQL order clauses.
var ProductSorts = map[string]string{
	"-created_at": "created_at DESC",
	"created_at":  "created_at ASC",
	"price":       "price ASC",
	"-price":      "price DESC",
	"name":        "name ASC",
	"-name":       "name DESC",
	"-views":      "views DESC",
}

type (
	ProductFilter struct {
		Query        string `query:"q"`
		CategorySlug string `query:"category"`
		Organic      bool   `query:"organic"`
		Sort         string `query:"sort"`
		Page         int    `query:"page"`
	}

	CreateProductRequest struct {
		CategoryID    string          `json:"category_id" validate:"required,uuid"`
		Name          string          `json:"name" validate:"required,max=200"`
		Description   string          `json:"description" validate:"required"`
		Price         decimal.Decimal `json:"price"`
		Unit          string          `json:"unit" validate:"required,oneof=kg g lb piece dozen bunch liter"`
		StockQuantity int             `json:"stock_quantity" validate:"min=0"`
		MinimumOrder  int             `json:"minimum_order" validate:"omitempty,min=1"`
		IsOrganic     bool            `json:"is_organic"`
		HarvestDate   string          `json:"harvest_date" validate:"omitempty"`
		IsAvailable   *bool           `json:"is_available"`
	}

	UpdateProductRequest struct {
		CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
		Name          *string          `json:"name" validate:"omitempty,max=200"`
		Description   *string          `json:"description"`
		Price         *decimal.Decimal `json:"price"`
		Unit          *string          `json:"unit" validate:"omitempty,oneof=kg g lb piece dozen bunch liter"`
		StockQuantity *int             `json:"stock_quantity" validate:"omitempty,min=0"`
		MinimumOrder  *int             `json:"minimum_order" validate:"omitempty,min=1"`
		IsOrganic     *bool            `json:"is_organic"`
		HarvestDate   *string          `json:"harvest_date"`
		IsAvailable   *bool            `json:"is_available"`
	}

	UploadProductImageRequest struct {
		Image     *multipart.FileHeader `form:"image" validate:"required"`
		IsPrimary bool                  `form:"is_primary"`
	}

	AddReviewRequest struct {
		Rating  int    `json:"rating" validate:"required,min=1,max=5"`
		Comment string `json:"comment" validate:"omitempty,max=2000"`
	}

	CategoryResponse struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		IsActive bool   `json:"is_active"`
	}

	ProductImageResponse struct {
		ID        string `json:"id"`
		ImageURL  string `json:"image_url"`
		IsPrimary bool   `json:"is_primary"`
	}

	ProductResponse struct {
		ID            string                 `json:"id"`
		Name          string                 `json:"name"`
		Slug          string                 `json:"slug"`
		Description   string                 `json:"description"`
		Price         decimal.Decimal        `json:"price"`
		Unit          string                 `json:"unit"`
		StockQuantity int                    `json:"stock_quantity"`
		MinimumOrder  int                    `json:"minimum_order"`
		IsOrganic     bool                   `json:"is_organic"`
		HarvestDate   *time.Time             `json:"harvest_date,omitempty"`
		IsAvailable   bool                   `json:"is_available"`
		Views         int                    `json:"views"`
		PrimaryImage  string                 `json:"primary_image,omitempty"`
		Images        []ProductImageResponse `json:"images,omitempty"`
		Category      *CategoryResponse      `json:"category,omitempty"`
		Farmer        *UserSummary           `json:"farmer,omitempty"`
		CreatedAt     time.Time              `json:"created_at"`
	}

	ReviewResponse struct {
		ID        string       `json:"id"`
		Rating    int          `json:"rating"`
		Comment   string       `json:"comment"`
		Buyer     *UserSummary `json:"buyer,omitempty"`
		CreatedAt time.Time    `json:"created_at"`
	}

	ProductDetailResponse struct {
		Product   ProductResponse  `json:"product"`
		Reviews   []ReviewResponse `json:"reviews"`
		AvgRating *float64         `json:"avg_rating"`
	}

	ProductListResponse struct {
		Products   []ProductResponse  `json:"products"`
		Categories []CategoryResponse `json:"categories,omitempty"`
		Pagination PaginationResponse `json:"pagination"`
	}

	HomeResponse struct {
		FeaturedProducts []ProductResponse  `json:"featured_products"`
		Categories       []CategoryResponse `json:"categories"`
	}
)
