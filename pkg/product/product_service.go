package product

import (
	"context"
	"errors"
	"farmket/domain"
	"farmket/entities"
	"farmket/internal/utils/storage"
	"farmket/pkg/user"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const featuredProductsLimit = 8

type (
	ProductService interface {
		Home(ctx context.Context) (domain.HomeResponse, error)
		ListCategories(ctx context.Context) ([]domain.CategoryResponse, error)
		ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductListResponse, error)
		GetProductBySlug(ctx context.Context, slug string) (domain.ProductDetailResponse, error)
		MyProducts(ctx context.Context, farmer user.Farmer) ([]domain.ProductResponse, error)
		CreateProduct(ctx context.Context, farmer user.Farmer, req domain.CreateProductRequest) (domain.ProductResponse, error)
		UpdateProduct(ctx context.Context, farmer user.Farmer, slug string, req domain.UpdateProductRequest) (domain.ProductResponse, error)
		DeleteProduct(ctx context.Context, farmer user.Farmer, slug string) error
		UploadProductImage(ctx context.Context, farmer user.Farmer, slug string, req domain.UploadProductImageRequest) (domain.ProductImageResponse, error)
		AddReview(ctx context.Context, buyer user.Buyer, slug string, req domain.AddReviewRequest) (domain.ReviewResponse, error)
		EnsureCategory(ctx context.Context, name string) error
	}

	productService struct {
		productRepository ProductRepository
		s3                storage.AwsS3
		logger            *zap.Logger
	}
)

func NewProductService(productRepository ProductRepository, s3 storage.AwsS3, logger *zap.Logger) ProductService {
	return &productService{
		productRepository: productRepository,
		s3:                s3,
		logger:            logger,
	}
}

func (s *productService) Home(ctx context.Context) (domain.HomeResponse, error) {
	products, err := s.productRepository.LatestProducts(ctx, featuredProductsLimit)
	if err != nil {
		return domain.HomeResponse{}, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return domain.HomeResponse{}, err
	}

	return domain.HomeResponse{
		FeaturedProducts: ToProductResponses(products),
		Categories:       categories,
	}, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]domain.CategoryResponse, error) {
	categories, err := s.productRepository.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}

	res := make([]domain.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, toCategoryResponse(c))
	}
	return res, nil
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if _, ok := domain.ProductSorts[filter.Sort]; !ok {
		filter.Sort = "-created_at"
	}

	products, count, err := s.productRepository.ListProducts(ctx, filter, domain.ProductsPerPage)
	if err != nil {
		return domain.ProductListResponse{}, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return domain.ProductListResponse{}, err
	}

	return domain.ProductListResponse{
		Products:   ToProductResponses(products),
		Categories: categories,
		Pagination: domain.NewPaginationResponse(filter.Page, domain.ProductsPerPage, count),
	}, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (domain.ProductDetailResponse, error) {
	product, err := s.getProduct(ctx, slug)
	if err != nil {
		return domain.ProductDetailResponse{}, err
	}

	if err := s.productRepository.IncrementViews(ctx, product.ID.String()); err != nil {
		return domain.ProductDetailResponse{}, err
	}
	product.Views++

	reviews, err := s.productRepository.ListReviews(ctx, product.ID.String())
	if err != nil {
		return domain.ProductDetailResponse{}, err
	}
	avg, err := s.productRepository.AverageRating(ctx, product.ID.String())
	if err != nil {
		return domain.ProductDetailResponse{}, err
	}

	res := domain.ProductDetailResponse{
		Product:   ToProductResponse(product),
		Reviews:   make([]domain.ReviewResponse, 0, len(reviews)),
		AvgRating: avg,
	}
	for _, r := range reviews {
		res.Reviews = append(res.Reviews, toReviewResponse(r))
	}
	return res, nil
}

func (s *productService) MyProducts(ctx context.Context, farmer user.Farmer) ([]domain.ProductResponse, error) {
	products, err := s.productRepository.ListProductsByFarmer(ctx, farmer.ID())
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

func (s *productService) CreateProduct(ctx context.Context, farmer user.Farmer, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	if !req.Price.IsPositive() {
		return domain.ProductResponse{}, domain.ErrInvalidPrice
	}

	category, err := s.getCategory(ctx, req.CategoryID)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	harvestDate, err := parseHarvestDate(req.HarvestDate)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	productSlug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	minimumOrder := req.MinimumOrder
	if minimumOrder < 1 {
		minimumOrder = 1
	}
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	product := &entities.Product{
		ID:            uuid.New(),
		FarmerID:      farmer.User.ID,
		CategoryID:    category.ID,
		Name:          req.Name,
		Slug:          productSlug,
		Description:   req.Description,
		Price:         req.Price.Round(2),
		Unit:          req.Unit,
		StockQuantity: req.StockQuantity,
		MinimumOrder:  minimumOrder,
		IsOrganic:     req.IsOrganic,
		HarvestDate:   harvestDate,
		IsAvailable:   isAvailable,
	}

	if err := s.productRepository.CreateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}

	product.Farmer = farmer.User
	product.Category = category
	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("farmer_id", farmer.ID()))
	return ToProductResponse(product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, farmer user.Farmer, slug string, req domain.UpdateProductRequest) (domain.ProductResponse, error) {
	product, err := s.getOwnedProduct(ctx, farmer, slug)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	if req.CategoryID != nil {
		category, err := s.getCategory(ctx, *req.CategoryID)
		if err != nil {
			return domain.ProductResponse{}, err
		}
		product.CategoryID = category.ID
		product.Category = category
	}
	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		product.Slug, err = s.uniqueSlug(ctx, *req.Name)
		if err != nil {
			return domain.ProductResponse{}, err
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return domain.ProductResponse{}, domain.ErrInvalidPrice
		}
		product.Price = req.Price.Round(2)
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.MinimumOrder != nil {
		product.MinimumOrder = *req.MinimumOrder
	}
	if req.IsOrganic != nil {
		product.IsOrganic = *req.IsOrganic
	}
	if req.HarvestDate != nil {
		product.HarvestDate, err = parseHarvestDate(*req.HarvestDate)
		if err != nil {
			return domain.ProductResponse{}, err
		}
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}
	return ToProductResponse(product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, farmer user.Farmer, slug string) error {
	product, err := s.getOwnedProduct(ctx, farmer, slug)
	if err != nil {
		return err
	}

	// Order items keep their product row; such products are only unlisted.
	ordered, err := s.productRepository.HasOrderItems(ctx, product.ID.String())
	if err != nil {
		return err
	}
	if ordered {
		product.IsAvailable = false
		if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
			return err
		}
		return domain.ErrProductHasOrders
	}

	if err := s.productRepository.DeleteProduct(ctx, product.ID.String()); err != nil {
		return err
	}

	for _, img := range product.Images {
		if key := s.s3.GetObjectKeyFromLink(img.ImageURL); key != "" {
			if err := s.s3.DeleteFile(ctx, key); err != nil {
				s.logger.Warn("failed to delete product image", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *productService) UploadProductImage(ctx context.Context, farmer user.Farmer, slug string, req domain.UploadProductImageRequest) (domain.ProductImageResponse, error) {
	product, err := s.getOwnedProduct(ctx, farmer, slug)
	if err != nil {
		return domain.ProductImageResponse{}, err
	}

	imageID := uuid.New()
	objectKey, err := s.s3.UploadFile(
		ctx,
		fmt.Sprintf("product-%s", imageID.String()),
		req.Image,
		"products",
		storage.AllowImage...,
	)
	if err != nil {
		return domain.ProductImageResponse{}, err
	}

	// the first image becomes primary
	isPrimary := req.IsPrimary || len(product.Images) == 0
	if isPrimary {
		if err := s.productRepository.DemotePrimaryImages(ctx, product.ID.String()); err != nil {
			return domain.ProductImageResponse{}, err
		}
	}

	image := &entities.ProductImage{
		ID:        imageID,
		ProductID: product.ID,
		ImageURL:  s.s3.GetPublicLinkKey(objectKey),
		IsPrimary: isPrimary,
	}
	if err := s.productRepository.AddImage(ctx, image); err != nil {
		return domain.ProductImageResponse{}, err
	}

	return domain.ProductImageResponse{
		ID:        image.ID.String(),
		ImageURL:  image.ImageURL,
		IsPrimary: image.IsPrimary,
	}, nil
}

func (s *productService) AddReview(ctx context.Context, buyer user.Buyer, slug string, req domain.AddReviewRequest) (domain.ReviewResponse, error) {
	product, err := s.getProduct(ctx, slug)
	if err != nil {
		return domain.ReviewResponse{}, err
	}

	review := &entities.Review{
		ID:        uuid.New(),
		ProductID: product.ID,
		BuyerID:   buyer.User.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.productRepository.CreateReview(ctx, review); err != nil {
		return domain.ReviewResponse{}, err
	}

	review.Buyer = buyer.User
	return toReviewResponse(review), nil
}

// EnsureCategory creates an active category unless one with the same slug
// is already present.
func (s *productService) EnsureCategory(ctx context.Context, name string) error {
	categories, err := s.productRepository.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	categorySlug := slug.Make(name)
	for _, c := range categories {
		if c.Slug == categorySlug {
			return nil
		}
	}

	return s.productRepository.CreateCategory(ctx, &entities.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     categorySlug,
		IsActive: true,
	})
}

func (s *productService) getProduct(ctx context.Context, slug string) (*entities.Product, error) {
	product, err := s.productRepository.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) getOwnedProduct(ctx context.Context, farmer user.Farmer, slug string) (*entities.Product, error) {
	product, err := s.getProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product.FarmerID != farmer.User.ID {
		return nil, domain.ErrProductNotOwned
	}
	return product, nil
}

func (s *productService) getCategory(ctx context.Context, id string) (*entities.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrCategoryNotFound
	}
	category, err := s.productRepository.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// uniqueSlug slugifies name and appends a short random suffix on collision.
func (s *productService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "product"
	}

	candidate := base
	for {
		exists, err := s.productRepository.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}
}

func parseHarvestDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, domain.ErrInvalidHarvestDate
	}
	return &date, nil
}
