package usecases

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rental-server/auth"
	"rental-server/entities"
	"rental-server/events"
	"rental-server/repositories"
)

const bcryptCost = 10

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

type Session struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

type AuthUseCase struct {
	UserRepo   repositories.UserRepository
	Tokens     *auth.TokenManager
	Events     events.Publisher
	AdminEmail string
}

func NewAuthUseCase(userRepo repositories.UserRepository, tokens *auth.TokenManager, pub events.Publisher, adminEmail string) *AuthUseCase {
	return &AuthUseCase{UserRepo: userRepo, Tokens: tokens, Events: pub, AdminEmail: adminEmail}
}

// Register creates an account and signs the caller in.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fail(ErrValidation, "Email, password, first name and last name are required")
	}

	if _, err := uc.UserRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, fail(ErrConflict, "User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      entities.RoleGuest,
	}
	if uc.AdminEmail != "" && in.Email == uc.AdminEmail {
		user.Role = entities.RoleAdmin
	}
	if err := uc.UserRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fail(ErrConflict, "User already exists")
		}
		return nil, err
	}

	token, err := uc.Tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	uc.Events.Publish(ctx, events.Event{
		Key:    events.UserRegistered,
		UserID: user.ID,
		Data:   events.UserAccount{UserID: user.ID, Email: user.Email, FirstName: user.FirstName},
	})
	return &Session{User: user, Token: token}, nil
}

// Login never tells an unknown email apart from a wrong password.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, fail(ErrValidation, "Email and password are required")
	}

	user, err := uc.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrUnauthorized, "Invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fail(ErrUnauthorized, "Invalid email or password")
	}

	token, err := uc.Tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	uc.Events.Publish(ctx, events.Event{
		Key:    events.UserLoggedIn,
		UserID: user.ID,
		Data:   events.UserAccount{UserID: user.ID, Email: user.Email, FirstName: user.FirstName},
	})
	return &Session{User: user, Token: token}, nil
}

// VerifyToken resolves a raw bearer token to its claims.
func (uc *AuthUseCase) VerifyToken(token string) (*auth.Claims, error) {
	claims, err := uc.Tokens.Parse(token)
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return nil, fail(ErrUnauthorized, "Access token required")
	case err != nil:
		return nil, fail(ErrForbidden, "Invalid or expired token")
	}
	return claims, nil
}

// VerifyAdmin checks the stored role, not the one carried in the token.
func (uc *AuthUseCase) VerifyAdmin(ctx context.Context, token string) (*entities.User, error) {
	claims, err := uc.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	user, err := uc.UserRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrForbidden, "Admin access required")
		}
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, fail(ErrForbidden, "Admin access required")
	}
	return user, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entities.User, error) {
	user, err := uc.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}
