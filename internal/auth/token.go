// Package auth issues and validates the signed identity tokens used by both
// the bearer-header and the cookie-session transports.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Audiences keep a token minted for one transport from being accepted on the other.
const (
	AudienceBearer  = "bearer"
	AudienceSession = "session"
)

// Claims is the payload carried by every token. The profile fields are only
// populated by IssueWithProfile.
type Claims struct {
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	FirstName       string  `json:"firstName,omitempty"`
	LastName        string  `json:"lastName,omitempty"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %v", ErrTokenInvalid, err)
	}
	return id, nil
}

type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for issuance and expiry checks.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a token carrying id, email and role.
func (i *TokenIssuer) Issue(identity domain.Identity) (string, error) {
	return i.sign(Claims{
		Email: identity.Email,
		Role:  string(identity.Role),
	}, identity.ID)
}

// IssueWithProfile also embeds the display fields used by session consumers.
func (i *TokenIssuer) IssueWithProfile(identity domain.Identity) (string, error) {
	return i.sign(Claims{
		Email:           identity.Email,
		Role:            string(identity.Role),
		FirstName:       identity.FirstName,
		LastName:        identity.LastName,
		ProfileImageURL: identity.ProfileImageURL,
	}, identity.ID)
}

func (i *TokenIssuer) sign(claims Claims, userID uuid.UUID) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    i.issuer,
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate verifies signature, issuer, audience and expiry. It only ever returns
// ErrTokenExpired or an error wrapping ErrTokenInvalid.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
