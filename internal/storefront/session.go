package storefront

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionIssuer = "rocketshoes-storefront"
	DefaultTTL    = 30 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionMaker issues and verifies HS256 tokens whose subject is the
// session id a cart is keyed by.
type SessionMaker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionMaker(secret string, ttl time.Duration) *SessionMaker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionMaker{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// New starts a fresh session and returns its token and id.
func (m *SessionMaker) New() (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	now := m.now()

	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

func (m *SessionMaker) Parse(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || token == nil || !token.Valid {
		return "", ErrInvalidSession
	}

	if _, err := uuid.Parse(c.Subject); err != nil {
		return "", ErrInvalidSession
	}
	return c.Subject, nil
}
