package user

import (
	"context"
	"errors"
	"farmket/entities"

	"gorm.io/gorm"
)

type (
	UserRepository interface {
		Transaction(ctx context.Context, fn func(repo UserRepository) error) error
		CreateUser(ctx context.Context, user *entities.User) error
		CreateFarmerProfile(ctx context.Context, profile *entities.FarmerProfile) error
		CreateBuyerProfile(ctx context.Context, profile *entities.BuyerProfile) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
		CheckEmailExists(ctx context.Context, email string) (bool, error)
		CheckUsernameExists(ctx context.Context, username string) (bool, error)
		UpdateUser(ctx context.Context, user *entities.User) error
		UpdateFarmerProfile(ctx context.Context, profile *entities.FarmerProfile) error
		UpdateBuyerProfile(ctx context.Context, profile *entities.BuyerProfile) error
		IncrementTotalSales(ctx context.Context, farmerID string, quantity int) error
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Transaction(ctx context.Context, fn func(repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx})
	})
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Omit("FarmerProfile", "BuyerProfile").Create(user).Error
}

func (r *userRepository) CreateFarmerProfile(ctx context.Context, profile *entities.FarmerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepository) CreateBuyerProfile(ctx context.Context, profile *entities.BuyerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Preload("FarmerProfile").
		Preload("BuyerProfile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Preload("FarmerProfile").
		Preload("BuyerProfile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Select("id").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) CheckUsernameExists(ctx context.Context, username string) (bool, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Omit("FarmerProfile", "BuyerProfile").Save(user).Error
}

func (r *userRepository) UpdateFarmerProfile(ctx context.Context, profile *entities.FarmerProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepository) UpdateBuyerProfile(ctx context.Context, profile *entities.BuyerProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepository) IncrementTotalSales(ctx context.Context, farmerID string, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&entities.FarmerProfile{}).
		Where("user_id = ?", farmerID).
		Update("total_sales", gorm.Expr("total_sales + ?", quantity)).Error
}
