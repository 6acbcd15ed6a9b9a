package user

import (
	"context"
	"errors"
	"farmket/domain"
	"farmket/entities"
	"farmket/internal/utils/storage"
	"farmket/pkg/jwt"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		LoadAccount(ctx context.Context, userID string) (Account, error)
		UpdateProfile(ctx context.Context, acc Account, req domain.UpdateProfileRequest) (domain.UserResponse, error)
		UploadProfilePicture(ctx context.Context, acc Account, req domain.UploadProfilePictureRequest) (domain.UserResponse, error)
		EnsureAdmin(ctx context.Context, username, email, password string) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
		logger         *zap.Logger
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3, logger *zap.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
		logger:         logger,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	exists, err := s.userRepository.CheckUsernameExists(ctx, req.Username)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if exists {
		return domain.AuthResponse{}, domain.ErrUsernameAlreadyExists
	}

	exists, err = s.userRepository.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if exists {
		return domain.AuthResponse{}, domain.ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	user := &entities.User{
		ID:          uuid.New(),
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashed),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		UserType:    req.UserType,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}

	err = s.userRepository.Transaction(ctx, func(repo UserRepository) error {
		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}

		switch user.UserType {
		case entities.UserTypeFarmer:
			user.FarmerProfile = &entities.FarmerProfile{
				ID:       uuid.New(),
				UserID:   user.ID,
				FarmName: fmt.Sprintf("%s's Farm", user.Username),
				FarmSize: decimal.Zero,
				Rating:   decimal.Zero,
			}
			return repo.CreateFarmerProfile(ctx, user.FarmerProfile)
		case entities.UserTypeBuyer:
			user.BuyerProfile = &entities.BuyerProfile{
				ID:              uuid.New(),
				UserID:          user.ID,
				DeliveryAddress: req.Address,
			}
			return repo.CreateBuyerProfile(ctx, user.BuyerProfile)
		default:
			return domain.ErrUnknownUserType
		}
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.UserType)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("user_type", user.UserType))
	return domain.AuthResponse{Token: token, User: ToUserResponse(user)}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	user, err := s.userRepository.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuthResponse{}, domain.ErrInvalidCredentials
		}
		return domain.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.UserType)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{Token: token, User: ToUserResponse(user)}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user), nil
}

func (s *userService) LoadAccount(ctx context.Context, userID string) (Account, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ResolveAccount(user)
}

func (s *userService) UpdateProfile(ctx context.Context, acc Account, req domain.UpdateProfileRequest) (domain.UserResponse, error) {
	user := acc.GetUser()

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepository.CheckEmailExists(ctx, *req.Email)
		if err != nil {
			return domain.UserResponse{}, err
		}
		if exists {
			return domain.UserResponse{}, domain.ErrEmailAlreadyExists
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	err := s.userRepository.Transaction(ctx, func(repo UserRepository) error {
		if err := repo.UpdateUser(ctx, user); err != nil {
			return err
		}

		switch a := acc.(type) {
		case Farmer:
			applyFarmerProfile(a.Profile, req)
			return repo.UpdateFarmerProfile(ctx, a.Profile)
		case Buyer:
			applyBuyerProfile(a.Profile, req)
			return repo.UpdateBuyerProfile(ctx, a.Profile)
		}
		return nil
	})
	if err != nil {
		return domain.UserResponse{}, err
	}

	return ToUserResponse(user), nil
}

func applyFarmerProfile(p *entities.FarmerProfile, req domain.UpdateProfileRequest) {
	if req.FarmName != nil {
		p.FarmName = *req.FarmName
	}
	if req.FarmSize != nil {
		p.FarmSize = *req.FarmSize
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.OrganicCertified != nil {
		p.OrganicCertified = *req.OrganicCertified
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
}

func applyBuyerProfile(p *entities.BuyerProfile, req domain.UpdateProfileRequest) {
	if req.CompanyName != nil {
		p.CompanyName = *req.CompanyName
	}
	if req.DeliveryAddress != nil {
		p.DeliveryAddress = *req.DeliveryAddress
	}
	if req.Preferences != nil {
		p.Preferences = *req.Preferences
	}
}

func (s *userService) UploadProfilePicture(ctx context.Context, acc Account, req domain.UploadProfilePictureRequest) (domain.UserResponse, error) {
	user := acc.GetUser()

	objectKey, err := s.s3.UploadFile(
		ctx,
		fmt.Sprintf("profile-%s-%s", user.ID.String(), uuid.NewString()[:8]),
		req.Picture,
		"profiles",
		storage.AllowImage...,
	)
	if err != nil {
		return domain.UserResponse{}, err
	}

	previous := user.ProfilePicture
	user.ProfilePicture = s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}

	if previous != "" {
		if key := s.s3.GetObjectKeyFromLink(previous); key != "" {
			if err := s.s3.DeleteFile(ctx, key); err != nil {
				s.logger.Warn("failed to delete old profile picture", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return ToUserResponse(user), nil
}

// EnsureAdmin creates a staff account when the username is not taken yet.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}

	exists, err := s.userRepository.CheckUsernameExists(ctx, username)
	if err != nil || exists {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepository.CreateUser(ctx, &entities.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      email,
		Password:   string(hashed),
		UserType:   entities.UserTypeAdmin,
		IsStaff:    true,
		IsVerified: true,
	})
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
