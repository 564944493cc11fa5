package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	"github.com/yungbote/courserate-backend/internal/data/repos"
	types "github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/apierr"
	"github.com/yungbote/courserate-backend/internal/platform/ctxutil"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

const (
	TokenCookieName   = "token"
	TokenSourceCookie = "cookie"
	TokenSourceHeader = "header"

	minPasswordLen = 6
)

var (
	ErrMissingToken = apierr.Unauthorized(string(domainagg.CodeUnauthenticated), "missing token")
	ErrInvalidToken = apierr.Unauthorized(string(domainagg.CodeInvalidToken), "invalid or expired token")
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, username, password string) (*types.User, IssuedToken, error)
	IssueToken(userID uuid.UUID) (IssuedToken, error)
	// SetContextFromToken verifies tokenString and attaches the caller identity to ctx.
	SetContextFromToken(ctx context.Context, tokenString, source string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, apierr.BadRequest(string(domainagg.CodeValidation), "username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apierr.BadRequest(string(domainagg.CodeValidation), "invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apierr.BadRequest(string(domainagg.CodeValidation), fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	dbc := dbctx.Context{Ctx: ctx}
	if existing, err := as.userRepo.GetByUsername(dbc, username); err != nil {
		return nil, apierr.Internal(err)
	} else if existing != nil {
		return nil, apierr.Conflict("user_exists", "username already taken")
	}
	if existing, err := as.userRepo.GetByEmail(dbc, email); err != nil {
		return nil, apierr.Internal(err)
	} else if existing != nil {
		return nil, apierr.Conflict("user_exists", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("hash password: %w", err))
	}
	user := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
		// Lost a race with a concurrent registration.
		if domainagg.IsCode(aggregates.MapError("Auth.Register", err), domainagg.CodeConflict) {
			return nil, apierr.Conflict("user_exists", "username or email already registered")
		}
		return nil, apierr.Internal(fmt.Errorf("create user: %w", err))
	}
	as.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.User, IssuedToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, IssuedToken{}, apierr.BadRequest(string(domainagg.CodeValidation), "username and password are required")
	}
	user, err := as.userRepo.GetByUsername(dbctx.Context{Ctx: ctx}, username)
	if err != nil {
		return nil, IssuedToken{}, apierr.Internal(err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, IssuedToken{}, apierr.Unauthorized("invalid_credentials", "invalid username or password")
	}
	tok, err := as.IssueToken(user.ID)
	if err != nil {
		return nil, IssuedToken{}, apierr.Internal(err)
	}
	return user, tok, nil
}

func (as *authService) IssueToken(userID uuid.UUID) (IssuedToken, error) {
	if userID == uuid.Nil {
		return IssuedToken{}, fmt.Errorf("issue token: missing user id")
	}
	if len(as.jwtSecretKey) == 0 {
		return IssuedToken{}, fmt.Errorf("issue token: JWT secret not configured")
	}
	now := as.now().UTC()
	exp := now.Add(as.accessTTL)
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: exp}, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString, source string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return as.jwtSecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "expired"
		}
		as.log.Debug("token rejected", "source", source, "reason", reason, "error", err)
		return ctx, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, ErrInvalidToken
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      userID,
		TokenString: tokenString,
		TokenSource: source,
	})
	return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
