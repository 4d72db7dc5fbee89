package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	auth "github.com/goliatone/go-auth"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/joho/godotenv"
)

// Config holds all settings for the viewprefs binary.
type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Persistence PersistenceConfig
	// CacheEnabled wraps the preference repository with go-repository-cache.
	CacheEnabled bool
	// StoreMaxAge bounds how long a loaded table state is served from memory.
	StoreMaxAge time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port string
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// AuthConfig implements auth.Config. Tokens are issued by the identity
// service; this binary only verifies them with the shared signing key.
type AuthConfig struct {
	SigningKey            string
	SigningMethod         string
	ContextKey            string
	TokenExpiration       int
	ExtendedTokenDuration int
	TokenLookup           string
	AuthScheme            string
	Issuer                string
	Audience              []string
	RejectedRouteKey      string
	RejectedRouteDefault  string
}

var _ auth.Config = AuthConfig{}

func (c AuthConfig) GetSigningKey() string           { return c.SigningKey }
func (c AuthConfig) GetSigningMethod() string        { return c.SigningMethod }
func (c AuthConfig) GetContextKey() string           { return c.ContextKey }
func (c AuthConfig) GetTokenExpiration() int         { return c.TokenExpiration }
func (c AuthConfig) GetExtendedTokenDuration() int   { return c.ExtendedTokenDuration }
func (c AuthConfig) GetTokenLookup() string          { return c.TokenLookup }
func (c AuthConfig) GetAuthScheme() string           { return c.AuthScheme }
func (c AuthConfig) GetIssuer() string               { return c.Issuer }
func (c AuthConfig) GetAudience() []string           { return c.Audience }
func (c AuthConfig) GetRejectedRouteKey() string     { return c.RejectedRouteKey }
func (c AuthConfig) GetRejectedRouteDefault() string { return c.RejectedRouteDefault }

// Enabled reports whether a signing key was configured.
func (c AuthConfig) Enabled() bool {
	return c.SigningKey != ""
}

// PersistenceConfig implements persistence.Config.
type PersistenceConfig struct {
	Debug          bool
	Driver         string
	Server         string
	PingTimeout    time.Duration
	OtelIdentifier string
}

var _ persistence.Config = PersistenceConfig{}

func (c PersistenceConfig) GetDebug() bool                { return c.Debug }
func (c PersistenceConfig) GetDriver() string             { return c.Driver }
func (c PersistenceConfig) GetServer() string             { return c.Server }
func (c PersistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c PersistenceConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// Load reads the given .env files (default ".env") into the process
// environment and builds a Config. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	pingTimeout, err := time.ParseDuration(getenv("VIEWPREFS_DB_PING_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, err
	}
	maxAge, err := time.ParseDuration(getenv("VIEWPREFS_STORE_MAX_AGE", "30s"))
	if err != nil {
		return Config{}, err
	}
	expiration, err := strconv.Atoi(getenv("VIEWPREFS_AUTH_TOKEN_EXPIRATION", "3600"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Server: ServerConfig{
			Host: getenv("VIEWPREFS_HOST", "localhost"),
			Port: getenv("VIEWPREFS_PORT", "8978"),
		},
		Auth: AuthConfig{
			SigningKey:            getenv("VIEWPREFS_AUTH_SIGNING_KEY", ""),
			SigningMethod:         getenv("VIEWPREFS_AUTH_SIGNING_METHOD", "HS256"),
			ContextKey:            getenv("VIEWPREFS_AUTH_CONTEXT_KEY", "auth_token"),
			TokenExpiration:       expiration,
			ExtendedTokenDuration: 86400,
			TokenLookup:           getenv("VIEWPREFS_AUTH_TOKEN_LOOKUP", "header:Authorization"),
			AuthScheme:            getenv("VIEWPREFS_AUTH_SCHEME", "Bearer"),
			Issuer:                getenv("VIEWPREFS_AUTH_ISSUER", ""),
			Audience:              getlist("VIEWPREFS_AUTH_AUDIENCE"),
			RejectedRouteKey:      "rejected_route",
			RejectedRouteDefault:  "/",
		},
		Persistence: PersistenceConfig{
			Debug:          getbool("VIEWPREFS_DB_DEBUG", false),
			Driver:         getenv("VIEWPREFS_DB_DRIVER", "sqlite"),
			Server:         getenv("VIEWPREFS_DB_SERVER", "file:viewprefs.db?_journal_mode=WAL&cache=shared&_fk=1"),
			PingTimeout:    pingTimeout,
			OtelIdentifier: getenv("VIEWPREFS_OTEL_IDENTIFIER", "go-viewprefs"),
		},
		CacheEnabled: getbool("VIEWPREFS_CACHE", false),
		StoreMaxAge:  maxAge,
	}, nil
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getbool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getenv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getlist(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
