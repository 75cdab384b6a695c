package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration and login.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.UserRepository
	outbox  repository.OutboxRepository
	jwtMgr  *auth.JWTManager
	tracker *Tracker
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	jwtMgr *auth.JWTManager,
	tracker *Tracker,
) *AuthService {
	return &AuthService{
		pool:    pool,
		users:   users,
		outbox:  outbox,
		jwtMgr:  jwtMgr,
		tracker: tracker,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Currency string  `json:"currency"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"is_admin"`
	Balance  int64     `json:"balance"`
}

// Register creates a new user account within a single transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.Currency == "" {
		input.Currency = "BRL"
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Currency:     input.Currency,
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewUserRegisteredEvent(user)); err != nil {
		return nil, domain.ErrInternal("outbox user registered", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:    domain.EventUserRegistered,
		UserID:   user.ID.String(),
		Username: user.Username,
		Currency: user.Currency,
	})

	token, err := s.jwtMgr.GenerateToken(auth.RealmUser, user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Balance:  0,
	}, nil
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT. Admin accounts receive an
// admin-realm token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	realm := auth.RealmUser
	if user.IsAdmin {
		realm = auth.RealmAdmin
	}
	token, err := s.jwtMgr.GenerateToken(realm, user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:    domain.EventUserLogin,
		UserID:   user.ID.String(),
		Username: user.Username,
	})

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Balance:  user.Balance,
	}, nil
}

// Me returns the current user's profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}
