package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Subject is the identity carried by an access token.
type Subject struct {
	UserID   uuid.UUID
	Username string
	Roles    []string
}

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	TokenType string    `json:"token_type"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(sub Subject) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (Claims, error)
	ValidateRefreshToken(tokenString string) (Claims, error)
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

func (k signingKey) usable() bool {
	return len(k.secret) > 0 && k.ttl > 0
}

// HMACService signs both token types with HS256, each with its own secret.
type HMACService struct {
	keys map[string]signingKey
	now  func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessExpiresIn, refreshExpiresIn time.Duration) *HMACService {
	return &HMACService{
		keys: map[string]signingKey{
			TokenTypeAccess:  {secret: []byte(accessSecret), ttl: accessExpiresIn},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: refreshExpiresIn},
		},
		now: time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(sub Subject) (string, time.Time, error) {
	return s.generate(TokenTypeAccess, sub)
}

func (s *HMACService) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	return s.generate(TokenTypeRefresh, Subject{UserID: userID})
}

// ValidateAccessToken rejects refresh tokens even when they are otherwise valid.
func (s *HMACService) ValidateAccessToken(tokenString string) (Claims, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

func (s *HMACService) ValidateRefreshToken(tokenString string) (Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *HMACService) generate(tokenType string, sub Subject) (string, time.Time, error) {
	key, ok := s.keys[tokenType]
	if !ok || !key.usable() {
		return "", time.Time{}, ErrTokenInvalid
	}

	issued := s.now().UTC()
	expires := issued.Add(key.ttl)
	claims := Claims{
		UserID:    sub.UserID,
		Username:  sub.Username,
		Roles:     sub.Roles,
		TokenType: tokenType,
		IssuedAt:  issued,
		ExpiredAt: expires,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   sub.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(issued),
			ExpiresAt: jwtlib.NewNumericDate(expires),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (s *HMACService) validate(tokenString, tokenType string) (Claims, error) {
	key, ok := s.keys[tokenType]
	if !ok || !key.usable() {
		return Claims{}, ErrTokenInvalid
	}

	claims, err := s.parse(tokenString, key.secret)
	switch {
	case err == nil && claims.TokenType != tokenType:
		return Claims{}, ErrWrongTokenType
	case err == nil:
		return claims, nil
	case tokenType == TokenTypeAccess && errors.Is(err, ErrTokenInvalid):
		// A refresh token fails the access secret; report it as the wrong type.
		if other, otherErr := s.parse(tokenString, s.keys[TokenTypeRefresh].secret); otherErr == nil && other.TokenType == TokenTypeRefresh {
			return Claims{}, ErrWrongTokenType
		}
	}
	return Claims{}, err
}

func (s *HMACService) parse(tokenString string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithExpirationRequired(),
	)

	var claims Claims
	tok, err := parser.ParseWithClaims(tokenString, &claims, func(*jwtlib.Token) (any, error) {
		return secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil, tok == nil, !tok.Valid:
		return Claims{}, ErrTokenInvalid
	}

	if !claims.ExpiredAt.IsZero() && s.now().UTC().After(claims.ExpiredAt.UTC()) {
		return Claims{}, ErrTokenExpired
	}
	if claims.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeRefresh {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
