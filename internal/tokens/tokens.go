package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// The first registered user is the admin. A placeholder until a real
	// permission model is needed.
	adminUserID = 1
)

var (
	ErrExpired  = errors.New("token expired")
	ErrInvalid  = errors.New("token invalid")
	ErrNotFresh = errors.New("token is not fresh")
)

// Claims is the full claim set carried by every token. Revocation is not
// encoded here: the jti is matched against the revocation registry by the
// request gate.
type Claims struct {
	Fresh   bool   `json:"fresh"`
	Typ     string `json:"typ"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalid, c.Subject)
	}
	return uint(id), nil
}

func (c *Claims) RequireFresh() error {
	if !c.Fresh {
		return ErrNotFresh
	}
	return nil
}

type Service struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewService(secret []byte) *Service {
	return &Service{
		Secret:     secret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func (s *Service) IssueAccess(userID uint, fresh bool) (string, error) {
	return s.sign(userID, TypeAccess, fresh, s.AccessTTL)
}

func (s *Service) IssueRefresh(userID uint) (string, error) {
	return s.sign(userID, TypeRefresh, false, s.RefreshTTL)
}

func (s *Service) sign(userID uint, typ string, fresh bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Fresh:   fresh,
		Typ:     typ,
		IsAdmin: userID == adminUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry only. Callers compose revocation and
// freshness checks on top of the returned claims.
func (s *Service) Parse(raw string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	if claims.Typ != TypeAccess && claims.Typ != TypeRefresh {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrInvalid, claims.Typ)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalid)
	}

	return claims, nil
}
