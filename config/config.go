package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBDriver    string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	Location       *time.Location
	RedisAddr      string
	ReportCacheTTL time.Duration
	SubmitRate     int
	TrustProxy     bool
	CORSOrigins    []string

	AdminUser     string
	AdminPassword string
}

// ParseFlags reads the command line. Every flag defaults to an environment
// variable, which may also come from a .env file in the working directory.
func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var host string
	fs.StringVar(&host, "host", getEnv("HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(getEnvInt("PORT", 80)), "listen port number")
	fs.StringVar(&cfg.DBDriver, "db-driver", getEnv("DB_DRIVER", "sqlite3"), "database driver: sqlite3 or pgx")
	fs.StringVar(&cfg.DBUrl, "db-url", getEnv("DATABASE_URL", "qforms.sqlite"), "SQLite3 file path or Postgres connection URL")
	fs.StringVar(&cfg.TokenSecret, "token-secret", getEnv("TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(getEnvInt("TOKEN_TTL", 120)), "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", getEnv("DEBUG", "") == "true", "log at DEBUG level")

	var tz string
	fs.StringVar(&tz, "timezone", getEnv("TIMEZONE", "UTC"), "time zone for weekday and hour-of-day analytics")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", ""), "Redis address for the report cache (in-memory cache when empty)")
	var cacheTTL uint
	fs.UintVar(&cacheTTL, "report-cache-ttl", uint(getEnvInt("REPORT_CACHE_TTL", 30)), "analytics report cache TTL in seconds, 0 disables caching")
	fs.IntVar(&cfg.SubmitRate, "submit-rate", getEnvInt("SUBMIT_RATE", 30), "public requests per minute per IP, 0 disables the limit")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", getEnv("TRUST_PROXY", "") == "true", "take the client IP from X-Forwarded-For / X-Real-IP (only behind a trusted reverse proxy)")
	var origins string
	fs.StringVar(&origins, "cors-origins", getEnv("CORS_ORIGINS", "*"), "comma separated list of allowed CORS origins")

	fs.StringVar(&cfg.AdminUser, "admin-user", getEnv("ADMIN_USER", ""), "create or update this form owner at startup")
	fs.StringVar(&cfg.AdminPassword, "admin-password", getEnv("ADMIN_PASSWORD", ""), "password for -admin-user")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.ReportCacheTTL = time.Duration(cacheTTL) * time.Second
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return
	}

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.DBDriver != "sqlite3" && cfg.DBDriver != "pgx":
		err = errors.New("-db-driver must be sqlite3 or pgx")
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("missing parameter -admin-password")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
