package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"hiring-contest-service/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

var errInvalidToken = errors.New("invalid or expired token")

// Claims is the HS256 token payload. Subject carries the user id.
type Claims struct {
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Anonymous bool        `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(user domain.User) (string, error) {
	now := t.now()
	claims := Claims{
		Email:     user.Email,
		Role:      user.Role,
		Anonymous: user.Anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (t *TokenIssuer) Parse(raw string) (domain.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return domain.User{}, errInvalidToken
	}
	return domain.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		Anonymous: claims.Anonymous,
	}, nil
}

// RequireRole validates the bearer token (or the token query param, for websockets) and
// rejects users of any other role.
func (t *TokenIssuer) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return t.authenticate(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			if role != "" && user.Role != role {
				writeError(w, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser accepts any authenticated user.
func (t *TokenIssuer) RequireUser(next http.Handler) http.Handler {
	return t.RequireRole("")(next)
}

func (t *TokenIssuer) authenticate(next func(http.ResponseWriter, *http.Request, domain.User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "missing authorization")
			return
		}
		user, err := t.Parse(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx), user)
	})
}

// UserFrom returns the authenticated user placed on ctx by the auth middleware.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
