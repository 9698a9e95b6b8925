package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/vraj-wappnet/go-hms-client/users"
)

var (
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

const refreshTokenLength = 32 // bytes, 256 bits

// storedRefreshToken tracks one issued refresh token. A user has at most one
// active refresh token; issuing or rotating replaces the previous one.
type storedRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// TokenIssuer creates and validates the development server's tokens: signed
// HS256 JWT access tokens and opaque rotating refresh tokens.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time

	mu      sync.Mutex
	byToken map[string]storedRefreshToken
	byUser  map[string]string // userID -> active refresh token
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithTokenExpiry sets the access and refresh token lifetimes.
func WithTokenExpiry(accessTTL, refreshTTL time.Duration) TokenIssuerOption {
	return func(t *TokenIssuer) {
		t.accessTTL = accessTTL
		t.refreshTTL = refreshTTL
	}
}

// WithNowFunc sets the time source (primarily for testing).
func WithNowFunc(now func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) {
		t.nowFunc = now
	}
}

// WithIssuer sets the iss claim on access tokens.
func WithIssuer(issuer string) TokenIssuerOption {
	return func(t *TokenIssuer) {
		t.issuer = issuer
	}
}

func NewTokenIssuer(secret []byte, options ...TokenIssuerOption) *TokenIssuer {
	t := &TokenIssuer{
		secret:  secret,
		issuer:  "go-hms-devserver",
		byToken: make(map[string]storedRefreshToken),
		byUser:  make(map[string]string),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	if t.accessTTL == 0 {
		t.accessTTL = 15 * time.Minute
	}
	if t.refreshTTL == 0 {
		t.refreshTTL = 7 * 24 * time.Hour
	}
	return t
}

// IssueAccessToken creates a signed JWT carrying the user's identity and role.
func (t *TokenIssuer) IssueAccessToken(user *users.User) (string, error) {
	now := t.nowFunc()
	claims := jwt.MapClaims{
		"iss":   t.issuer,
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(t.accessTTL).Unix(),
		"jti":   uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", pkgerrors.Wrap(err, "[TokenIssuer.IssueAccessToken] sign token")
	}
	return signed, nil
}

// AccessClaims is the validated identity carried by an access token.
type AccessClaims struct {
	UserID string
	Email  string
	Role   users.Role
}

// ParseAccessToken verifies the signature and expiry of an access token.
func (t *TokenIssuer) ParseAccessToken(raw string) (AccessClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAccessToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.nowFunc))
	if err != nil || !token.Valid {
		return AccessClaims{}, ErrInvalidAccessToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return AccessClaims{}, ErrInvalidAccessToken
	}
	return AccessClaims{UserID: sub, Email: email, Role: users.Role(role)}, nil
}

// IssueRefreshToken creates a new opaque refresh token for the user,
// replacing any previously active one.
func (t *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	raw, err := newOpaqueToken(refreshTokenLength)
	if err != nil {
		return "", pkgerrors.Wrap(err, "[TokenIssuer.IssueRefreshToken] generate token")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if previous, ok := t.byUser[userID]; ok {
		delete(t.byToken, previous)
	}
	t.byToken[raw] = storedRefreshToken{Token: raw, UserID: userID, Iat: t.nowFunc()}
	t.byUser[userID] = raw
	return raw, nil
}

// RotateRefreshToken validates a presented refresh token, invalidates it and
// returns the owning user with a freshly issued replacement. The old token
// is dead even if the caller never uses the new one.
func (t *TokenIssuer) RotateRefreshToken(raw string) (string, string, error) {
	t.mu.Lock()
	stored, ok := t.byToken[raw]
	if !ok {
		t.mu.Unlock()
		return "", "", ErrInvalidRefreshToken
	}
	delete(t.byToken, stored.Token)
	delete(t.byUser, stored.UserID)
	expired := t.nowFunc().Sub(stored.Iat) > t.refreshTTL
	t.mu.Unlock()

	if expired {
		return "", "", ErrRefreshTokenExpired
	}

	next, err := t.IssueRefreshToken(stored.UserID)
	if err != nil {
		return "", "", err
	}
	return stored.UserID, next, nil
}

// RevokeRefreshTokens drops every refresh token held by the user.
func (t *TokenIssuer) RevokeRefreshTokens(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token, ok := t.byUser[userID]; ok {
		delete(t.byToken, token)
		delete(t.byUser, userID)
	}
}

func newOpaqueToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
