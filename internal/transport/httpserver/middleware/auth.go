package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"recipe-share-go/internal/config"
	"recipe-share-go/pkg/logger"
)

// Auth verifies the bearer token of every request behind it. With a shared
// JWT secret configured, tokens are verified locally; otherwise each request
// round-trips to the provider's userinfo endpoint. The verified identity is
// upserted into the profiles table and placed in the request context.
type Auth struct {
	baseURL  string
	apiKey   string
	secret   []byte
	client   *http.Client
	profiles ProfileSaver
	skipAuth bool
	mockUser User
	log      logger.Logger
}

var (
	errAuthNotConfigured = errors.New("auth provider not configured")
	errTokenRejected     = errors.New("token rejected by auth provider")
)

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type ProfileSaver interface {
	UpsertProfile(ctx context.Context, userID, email, name, avatarURL string) error
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

func NewAuth(cfg config.AuthConfig, profiles ProfileSaver, log logger.Logger) *Auth {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	var secret []byte
	if cfg.JWTSecret != "" {
		secret = []byte(cfg.JWTSecret)
	}

	return &Auth{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.PublishableKey,
		secret:   secret,
		client:   &http.Client{Timeout: timeout},
		profiles: profiles,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:        strings.TrimSpace(cfg.MockUserID),
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			Name:      strings.TrimSpace(cfg.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
		},
		log: log,
	}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			if a.mockUser.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			a.admit(w, r, next, a.mockUser)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		var user User
		var err error
		if a.secret != nil {
			user, err = a.verifyLocal(token)
		} else {
			user, err = a.verifyRemote(r.Context(), token)
		}
		if err != nil {
			a.log.Debug("auth: token rejected", "err", err)
			unauthorized(w)
			return
		}

		a.admit(w, r, next, user)
	})
}

func (a *Auth) admit(w http.ResponseWriter, r *http.Request, next http.Handler, user User) {
	if a.profiles != nil {
		if err := a.profiles.UpsertProfile(r.Context(), user.ID, user.Email, user.Name, user.AvatarURL); err != nil {
			a.log.InternalError("auth: upsert profile failed", err, "user_id", user.ID)
		}
	}
	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
}

type tokenClaims struct {
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (a *Auth) verifyLocal(token string) (User, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return User{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return User{}, jwt.ErrTokenInvalidClaims
	}

	return User{
		ID:        claims.Subject,
		Email:     claims.Email,
		Name:      firstNonEmpty(stringFromMap(claims.UserMetadata, "name"), stringFromMap(claims.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(claims.UserMetadata, "avatar_url"),
	}, nil
}

func (a *Auth) verifyRemote(ctx context.Context, token string) (User, error) {
	if a.baseURL == "" || a.apiKey == "" {
		return User{}, errAuthNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, errTokenRejected
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, err
	}

	userID := firstNonEmpty(payload.ID, payload.Sub, payload.User.ID, payload.User.Sub)
	if userID == "" {
		return User{}, errTokenRejected
	}

	return User{
		ID:        userID,
		Email:     payload.Email,
		Name:      firstNonEmpty(stringFromMap(payload.UserMetadata, "name"), stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(payload.UserMetadata, "avatar_url"),
	}, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]interface{}, key string) string {
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, _ := value.(string)
	return parsed
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
