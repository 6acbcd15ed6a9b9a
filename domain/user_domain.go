package domain

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "user logged in successfully"
	MessageSuccessGetDetail      = "user detail retrieved successfully"
	MessageSuccessUpdateProfile  = "profile updated successfully"
	MessageSuccessUploadPicture  = "profile picture uploaded successfully"
	MessageFailedRegister        = "failed to register user"
	MessageFailedLogin           = "failed to login"
	MessageFailedGetDetail       = "failed to get user detail"
	MessageFailedUpdateProfile   = "failed to update profile"
	MessageFailedUploadPicture   = "failed to upload profile picture"
	MessageFailedAccountRequired = "failed to resolve account"

	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrProfileNotFound       = errors.New("user profile not found")
	ErrUnknownUserType       = errors.New("unknown user type")
	ErrFarmerOnly            = errors.New("only farmers can perform this action")
	ErrBuyerOnly             = errors.New("only buyers can perform this action")
	ErrStaffOnly             = errors.New("only staff can perform this action")
)

type (
	RegisterRequest struct {
		Username    string `json:"username" validate:"required,min=3,max=150,alphanum"`
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8"`
		FirstName   string `json:"first_name" validate:"omitempty,max=150"`
		LastName    string `json:"last_name" validate:"omitempty,max=150"`
		UserType    string `json:"user_type" validate:"required,oneof=farmer buyer"`
		PhoneNumber string `json:"phone_number" validate:"omitempty,phone"`
		Address     string `json:"address" validate:"omitempty"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	AuthResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UpdateProfileRequest struct {
		FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
		LastName    *string `json:"last_name" validate:"omitempty,max=150"`
		Email       *string `json:"email" validate:"omitempty,email"`
		PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
		Address     *string `json:"address"`

		// farmer profile
		FarmName         *string          `json:"farm_name" validate:"omitempty,max=200"`
		FarmSize         *decimal.Decimal `json:"farm_size"`
		Location         *string          `json:"location" validate:"omitempty,max=200"`
		Latitude         *float64         `json:"latitude" validate:"omitempty,latitude"`
		Longitude        *float64         `json:"longitude" validate:"omitempty,longitude"`
		OrganicCertified *bool            `json:"organic_certified"`
		Description      *string          `json:"description"`

		// buyer profile
		CompanyName     *string `json:"company_name" validate:"omitempty,max=200"`
		DeliveryAddress *string `json:"delivery_address"`
		Preferences     *string `json:"preferences"`
	}

	UploadProfilePictureRequest struct {
		Picture *multipart.FileHeader `form:"picture" validate:"required"`
	}

	UserSummary struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		FullName       string `json:"full_name"`
		UserType       string `json:"user_type"`
		ProfilePicture string `json:"profile_picture,omitempty"`
		FarmName       string `json:"farm_name,omitempty"`
		CompanyName    string `json:"company_name,omitempty"`
	}

	FarmerProfileResponse struct {
		FarmName         string          `json:"farm_name"`
		FarmSize         decimal.Decimal `json:"farm_size"`
		Location         string          `json:"location"`
		Latitude         *float64        `json:"latitude,omitempty"`
		Longitude        *float64        `json:"longitude,omitempty"`
		OrganicCertified bool            `json:"organic_certified"`
		Description      string          `json:"description"`
		Rating           decimal.Decimal `json:"rating"`
		TotalSales       int             `json:"total_sales"`
	}

	BuyerProfileResponse struct {
		CompanyName     string `json:"company_name"`
		DeliveryAddress string `json:"delivery_address"`
		Preferences     string `json:"preferences"`
	}

	UserResponse struct {
		ID             string                 `json:"id"`
		Username       string                 `json:"username"`
		Email          string                 `json:"email"`
		FirstName      string                 `json:"first_name"`
		LastName       string                 `json:"last_name"`
		UserType       string                 `json:"user_type"`
		PhoneNumber    string                 `json:"phone_number"`
		Address        string                 `json:"address"`
		ProfilePicture string                 `json:"profile_picture,omitempty"`
		IsVerified     bool                   `json:"is_verified"`
		IsStaff        bool                   `json:"is_staff"`
		FarmerProfile  *FarmerProfileResponse `json:"farmer_profile,omitempty"`
		BuyerProfile   *BuyerProfileResponse  `json:"buyer_profile,omitempty"`
		CreatedAt      time.Time              `json:"created_at"`
	}
)
