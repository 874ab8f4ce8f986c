package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of tokens issued by HMACSigner.
const DefaultTokenTTL = 5 * time.Minute

// Signer produces the bearer token attached to requests of signed profiles.
type Signer interface {
	Sign(interfaceID string, params Params) (string, error)
}

// HMACSigner issues HS256 tokens binding the interface id and a hash of the
// request parameters.
type HMACSigner struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACSigner creates a signer. An empty key is an error.
func NewHMACSigner(key []byte, issuer string) (*HMACSigner, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is required")
	}
	return &HMACSigner{key: key, issuer: issuer, ttl: DefaultTokenTTL, now: time.Now}, nil
}

// ParamsHash returns the hex SHA-256 of the encoded params.
func ParamsHash(params Params) string {
	sum := sha256.Sum256([]byte(params.Encode()))
	return hex.EncodeToString(sum[:])
}

// Sign returns a signed token for one request.
func (s *HMACSigner) Sign(interfaceID string, params Params) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   interfaceID,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
		"phash": ParamsHash(params),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing request: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks its signature, expiry and issuer.
func (s *HMACSigner) Verify(token string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
