package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/normalization"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/ctxutil"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/sendgrid"
)

const resetTokenTTL = 10 * time.Minute

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthConfig struct {
	JWTSecret  string
	JWTExpire  time.Duration
	BcryptCost int
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// SetContextFromToken validates a bearer token and attaches the caller to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateDetails(ctx context.Context, name, email *string) (*domain.User, error)
	UpdatePassword(ctx context.Context, currentPassword, newPassword string) (*domain.User, string, error)
	// ForgotPassword mails a reset link built from resetURLBase + raw token.
	ForgotPassword(ctx context.Context, email, resetURLBase string) error
	ResetPassword(ctx context.Context, rawToken, password string) (*domain.User, string, error)
	TokenTTL() time.Duration
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	mailer   sendgrid.Client
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, mailer sendgrid.Client, cfg AuthConfig) AuthService {
	serviceLog := log.With("service", "AuthService")
	if cfg.JWTExpire <= 0 {
		cfg.JWTExpire = 30 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (as *authService) TokenTTL() time.Duration { return as.cfg.JWTExpire }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.IsRegistrableRole(role) {
		return nil, "", apierr.BadRequest("invalid_role", "Role %s cannot be registered", role)
	}
	hash, err := as.hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &domain.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalization.ParseInputString(in.Email),
		Role:     role,
		Password: hash,
	}
	if _, err := as.userRepo.Create(ctx, nil, []*domain.User{user}); err != nil {
		return nil, "", persistErr("auth.register", err)
	}
	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return nil, "", apierr.BadRequest("missing_credentials", "Please provide an email and password")
	}
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", persistErr("auth.login", err)
	}
	if user == nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}
	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil || !parsed.Valid {
		return ctx, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return ctx, persistErr("auth.token", err)
	}
	if user == nil {
		return ctx, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: user.ID, Role: user.Role}), nil
}

func (as *authService) Me(ctx context.Context) (*domain.User, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := as.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, persistErr("auth.me", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "User not found with id of %s", rd.UserID)
	}
	return user, nil
}

func (as *authService) UpdateDetails(ctx context.Context, name, email *string) (*domain.User, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if name != nil {
		fields["name"] = strings.TrimSpace(*name)
	}
	if email != nil {
		fields["email"] = normalization.ParseInputString(*email)
	}
	if err := as.userRepo.Update(ctx, nil, rd.UserID, fields); err != nil {
		return nil, persistErr("auth.update_details", err)
	}
	return as.Me(ctx)
}

func (as *authService) UpdatePassword(ctx context.Context, currentPassword, newPassword string) (*domain.User, string, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, "", err
	}
	user, err := as.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, "", persistErr("auth.update_password", err)
	}
	if user == nil {
		return nil, "", apierr.NotFound("user_not_found", "User not found with id of %s", rd.UserID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return nil, "", apierr.Unauthorized("invalid_password", "Password is incorrect")
	}
	hash, err := as.hashPassword(newPassword)
	if err != nil {
		return nil, "", err
	}
	if err := as.userRepo.Update(ctx, nil, user.ID, map[string]any{"password": hash}); err != nil {
		return nil, "", persistErr("auth.update_password", err)
	}
	user.Password = hash
	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return persistErr("auth.forgot_password", err)
	}
	if user == nil {
		return apierr.NotFound("user_not_found", "There is no user with that email")
	}

	raw, hashed, err := newResetToken()
	if err != nil {
		return apierr.Internal("internal", err)
	}
	expire := as.now().UTC().Add(resetTokenTTL)
	if err := as.userRepo.SetResetToken(ctx, nil, user.ID, &hashed, &expire); err != nil {
		return persistErr("auth.forgot_password", err)
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + raw
	text := fmt.Sprintf("You are receiving this email because you (or someone else) has requested the reset of a password. Please make a PUT request to: \n\n %s", resetURL)
	if as.mailer == nil {
		as.log.Warn("email delivery not configured; reset link logged", "user_id", user.ID, "reset_url", resetURL)
		return nil
	}
	if err := as.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:       user.Email,
		ToName:   user.Name,
		Subject:  "Password reset token",
		Text:     text,
		Category: "password_reset",
	}); err != nil {
		as.log.Error("reset email failed", "user_id", user.ID, "error", err)
		if clearErr := as.userRepo.SetResetToken(ctx, nil, user.ID, nil, nil); clearErr != nil {
			as.log.Warn("failed to clear reset token", "user_id", user.ID, "error", clearErr)
		}
		return apierr.Internal("email_failed", errors.New("Email could not be sent"))
	}
	return nil
}

func (as *authService) ResetPassword(ctx context.Context, rawToken, password string) (*domain.User, string, error) {
	sum := sha256.Sum256([]byte(rawToken))
	user, err := as.userRepo.GetByResetToken(ctx, nil, hex.EncodeToString(sum[:]), as.now().UTC())
	if err != nil {
		return nil, "", persistErr("auth.reset_password", err)
	}
	if user == nil {
		return nil, "", apierr.BadRequest("invalid_token", "Invalid token")
	}
	hash, err := as.hashPassword(password)
	if err != nil {
		return nil, "", err
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userRepo.Update(ctx, tx, user.ID, map[string]any{"password": hash}); err != nil {
			return err
		}
		return as.userRepo.SetResetToken(ctx, tx, user.ID, nil, nil)
	})
	if err != nil {
		return nil, "", persistErr("auth.reset_password", err)
	}
	user.Password = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	token, err := as.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) hashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", apierr.BadRequest("invalid_password", "Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.cfg.BcryptCost)
	if err != nil {
		return "", apierr.Internal("internal", err)
	}
	return string(hash), nil
}

func (as *authService) signToken(user *domain.User) (string, error) {
	if as.cfg.JWTSecret == "" {
		return "", apierr.Internal("internal", errors.New("jwt secret not configured"))
	}
	now := as.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.JWTExpire)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecret))
	if err != nil {
		return "", apierr.Internal("internal", err)
	}
	return signed, nil
}

// newResetToken returns the raw token for the email and its sha256 for storage.
func newResetToken() (string, string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw := hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}
