package product

import (
	"context"
	"errors"
	"farmket/domain"
	"farmket/entities"

	"gorm.io/gorm"
)

type (
	ProductRepository interface {
		ListCategories(ctx context.Context, activeOnly bool) ([]*entities.Category, error)
		GetCategoryByID(ctx context.Context, id string) (*entities.Category, error)
		CreateCategory(ctx context.Context, category *entities.Category) error

		ListProducts(ctx context.Context, filter domain.ProductFilter, limit int) ([]*entities.Product, int64, error)
		LatestProducts(ctx context.Context, limit int) ([]*entities.Product, error)
		ListProductsByFarmer(ctx context.Context, farmerID string) ([]*entities.Product, error)
		GetProductBySlug(ctx context.Context, slug string) (*entities.Product, error)
		SlugExists(ctx context.Context, slug string) (bool, error)
		CreateProduct(ctx context.Context, product *entities.Product) error
		UpdateProduct(ctx context.Context, product *entities.Product) error
		DeleteProduct(ctx context.Context, id string) error
		HasOrderItems(ctx context.Context, productID string) (bool, error)
		IncrementViews(ctx context.Context, id string) error

		AddImage(ctx context.Context, image *entities.ProductImage) error
		DemotePrimaryImages(ctx context.Context, productID string) error

		CreateReview(ctx context.Context, review *entities.Review) error
		ListReviews(ctx context.Context, productID string) ([]*entities.Review, error)
		AverageRating(ctx context.Context, productID string) (*float64, error)
	}

	productRepository struct {
		db *gorm.DB
	}
)

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListCategories(ctx context.Context, activeOnly bool) ([]*entities.Category, error) {
	var categories []*entities.Category
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) GetCategoryByID(ctx context.Context, id string) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *productRepository) CreateCategory(ctx context.Context, category *entities.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *productRepository) ListProducts(ctx context.Context, filter domain.ProductFilter, limit int) ([]*entities.Product, int64, error) {
	var products []*entities.Product
	var count int64
	offset := (filter.Page - 1) * limit

	query := r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("products.is_available = ?", true)

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("(products.name ILIKE ? OR products.description ILIKE ?)", like, like)
	}
	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Organic {
		query = query.Where("products.is_organic = ?", true)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	order, ok := domain.ProductSorts[filter.Sort]
	if !ok {
		order = domain.ProductSorts["-created_at"]
	}

	if err := query.
		Preload("Farmer.FarmerProfile").
		Preload("Category").
		Preload("Images").
		Order("products." + order).
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *productRepository) LatestProducts(ctx context.Context, limit int) ([]*entities.Product, error) {
	var products []*entities.Product
	if err := r.db.WithContext(ctx).
		Preload("Farmer.FarmerProfile").
		Preload("Category").
		Preload("Images").
		Where("is_available = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListProductsByFarmer(ctx context.Context, farmerID string) ([]*entities.Product, error) {
	var products []*entities.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images").
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).
		Preload("Farmer.FarmerProfile").
		Preload("Category").
		Preload("Images").
		Where("slug = ?", slug).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Omit("Farmer", "Category", "Images").Create(product).Error
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Omit("Farmer", "Category", "Images").Save(product).Error
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Product{}).Error
}

func (r *productRepository) HasOrderItems(ctx context.Context, productID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *productRepository) AddImage(ctx context.Context, image *entities.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *productRepository) DemotePrimaryImages(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Model(&entities.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
}

func (r *productRepository) CreateReview(ctx context.Context, review *entities.Review) error {
	return r.db.WithContext(ctx).Omit("Buyer").Create(review).Error
}

func (r *productRepository) ListReviews(ctx context.Context, productID string) ([]*entities.Review, error) {
	var reviews []*entities.Review
	if err := r.db.WithContext(ctx).
		Preload("Buyer").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *productRepository) AverageRating(ctx context.Context, productID string) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&entities.Review{}).
		Select("AVG(rating)").
		Where("product_id = ?", productID).
		Scan(&avg).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return avg, nil
}
