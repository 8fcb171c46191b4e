package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"associados_api/internal/common"
	"associados_api/internal/common/security"
	"associados_api/internal/domain/model"
	"associados_api/internal/domain/repository"
	"associados_api/internal/validation"
)

type AuthService struct {
	userRepo  repository.UserRepository
	blacklist repository.TokenBlacklist
}

func NewAuthService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist) *AuthService {
	return &AuthService{userRepo: userRepo, blacklist: blacklist}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	errs := validation.Errors{}
	switch {
	case req.Name == "":
		errs.Add("name", "The name field is required.")
	case !validation.LengthBetween(req.Name, 3, 255):
		if len([]rune(req.Name)) < 3 {
			errs.Add("name", "The name must be at least 3 characters.")
		} else {
			errs.Add("name", "The name must not be greater than 255 characters.")
		}
	}
	switch {
	case req.Email == "":
		errs.Add("email", "The email field is required.")
	case !validation.ValidEmail(req.Email):
		errs.Add("email", "The email must be a valid email address.")
	case len(req.Email) > 255:
		errs.Add("email", "The email must not be greater than 255 characters.")
	}
	switch {
	case req.Password == "":
		errs.Add("password", "The password field is required.")
	case len(req.Password) < 8:
		errs.Add("password", "The password must be at least 8 characters.")
	}

	if !errs.Has("email") {
		inUse, err := s.userRepo.EmailInUse(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if inUse {
			errs.Add("email", "The email has already been taken.")
		}
	}

	if !errs.Empty() {
		return nil, &common.ValidationError{Fields: errs}
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo surfaces a ValidationError on a uniqueness race.
		return nil, err
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("New user registered: id=%d email=%s", user.ID, user.Email)
	return &RegisterResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)

	errs := validation.Errors{}
	switch {
	case req.Email == "":
		errs.Add("email", "The email field is required.")
	case !validation.ValidEmail(req.Email):
		errs.Add("email", "The email must be a valid email address.")
	}
	if req.Password == "" {
		errs.Add("password", "The password field is required.")
	}
	if !errs.Empty() {
		return nil, &common.ValidationError{Fields: errs}
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Unknown email and wrong password are indistinguishable.
			log.Printf("Failed login attempt: email=%s", req.Email)
			return nil, &common.AuthError{Message: common.MsgInvalidCredentials}
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		log.Printf("Failed login attempt: email=%s", req.Email)
		return nil, &common.AuthError{Message: common.MsgInvalidCredentials}
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("User logged in: id=%d", user.ID)
	return &LoginResponse{Token: token, ExpiresIn: security.TokenTTLSeconds()}, nil
}

// Logout blacklists the presented token for whatever is left of its
// lifetime; a blacklisted jti never authenticates again.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := s.blacklist.Revoke(ctx, jti, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	log.Printf("Token revoked: jti=%s", jti)
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.NotFoundError{Message: "User not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
