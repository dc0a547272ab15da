package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset"
)

// TokenRevoker remembers refresh tokens that were logged out before their
// natural expiry.
type TokenRevoker interface {
	Revoke(token string, until time.Time)
	IsRevoked(token string) bool
}

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error

	// VerifyToken validates a token of the given type and resolves it to a
	// live user. Disabled users are rejected even with a valid token.
	VerifyToken(ctx context.Context, token, tokenType string) (*entity.User, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	jwtCfg     config.JWTConfig
	revoker    TokenRevoker
	publisher  IEventPublisher
	logger     logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	jwtCfg config.JWTConfig,
	revoker TokenRevoker,
	publisher IEventPublisher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		jwtCfg:     jwtCfg,
		revoker:    revoker,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *authService) secretFor(tokenType string) ([]byte, time.Duration, error) {
	switch tokenType {
	case TokenTypeAccess:
		return []byte(s.jwtCfg.AccessSecret), time.Duration(s.jwtCfg.AccessTTLMinutes) * time.Minute, nil
	case TokenTypeRefresh:
		return []byte(s.jwtCfg.RefreshSecret), time.Duration(s.jwtCfg.RefreshTTLMinutes) * time.Minute, nil
	case TokenTypeReset:
		return []byte(s.jwtCfg.ResetSecret), time.Duration(s.jwtCfg.ResetTTLMinutes) * time.Minute, nil
	}
	return nil, 0, fmt.Errorf("unknown token type: %s", tokenType)
}

func (s *authService) signToken(userID uuid.UUID, tokenType string) (string, time.Time, error) {
	secret, ttl, err := s.secretFor(tokenType)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    tokenType,
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// parseToken validates signature, expiry and the embedded type claim, and
// returns the subject user id plus the expiry.
func (s *authService) parseToken(tokenStr, tokenType string) (uuid.UUID, time.Time, error) {
	secret, _, err := s.secretFor(tokenType)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, time.Time{}, apperr.ErrTokenExpired
		}
		return uuid.Nil, time.Time{}, apperr.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, time.Time{}, apperr.ErrInvalidCredentials
	}

	if typ, _ := claims["type"].(string); typ != tokenType {
		return uuid.Nil, time.Time{}, apperr.ErrInvalidCredentials
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, time.Time{}, apperr.ErrInvalidCredentials
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return uuid.Nil, time.Time{}, apperr.ErrInvalidCredentials
	}

	return userID, exp.Time, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrUserExists
	}

	if req.Email != nil {
		existing, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: *req.Email})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil && user.Email != nil {
		event := events.NewUserRegistered(user.Id.String(), user.Username, *user.Email)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("AuthService", "Failed to publish registration event", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
		}
	}

	s.logger.Info("AuthService", "User registered", map[string]interface{}{"user_id": user.Id, "username": user.Username})

	return &dto.RegisterResponse{Id: user.Id, Username: user.Username}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if user.Disabled {
		return nil, apperr.ErrInactiveUser
	}

	accessToken, _, err := s.signToken(user.Id, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.signToken(user.Id, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		User: dto.UserDTO{
			Id:       user.Id,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Disabled: user.Disabled,
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.RefreshResponse, error) {
	user, err := s.VerifyToken(ctx, req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	accessToken, _, err := s.signToken(user.Id, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// Logout denylists the refresh token until it would have expired anyway.
// Outstanding access tokens stay valid for their short lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	userID, expiresAt, err := s.parseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return err
	}

	s.revoker.Revoke(refreshToken, expiresAt)
	s.logger.Info("AuthService", "User logged out", map[string]interface{}{"user_id": userID})
	return nil
}

// ForgotPassword never reveals whether the account exists: unknown users
// and users without an email both get a silent success.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return err
	}
	if user == nil || user.Email == nil || user.Disabled {
		return nil
	}

	resetToken, _, err := s.signToken(user.Id, TokenTypeReset)
	if err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}

	event := events.NewPasswordResetRequested(user.Id.String(), user.Username, *user.Email, resetToken)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("AuthService", "Failed to publish reset event", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
		return err
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.VerifyToken(ctx, req.Token, TokenTypeReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().UpdatePassword(ctx, user.Id, string(hash)); err != nil {
		return err
	}

	s.logger.Info("AuthService", "Password reset", map[string]interface{}{"user_id": user.Id})
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperr.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return uow.UserRepository().UpdatePassword(ctx, userID, string(hash))
}

func (s *authService) VerifyToken(ctx context.Context, token, tokenType string) (*entity.User, error) {
	if tokenType == TokenTypeRefresh && s.revoker.IsRevoked(token) {
		return nil, apperr.ErrInvalidCredentials
	}

	userID, _, err := s.parseToken(token, tokenType)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, apperr.ErrInactiveUser
	}

	return user, nil
}
