package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret      string
	MySQLDSN       string
	MongoURI       string
	MongoDBName    string
	HTTPAddr       string
	RateLimitRPS   float64
	RateLimitBurst int
	TokenTTL       time.Duration
	LogLevel       string
	// TrustedProxies are peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix
}

var required = []string{"JWT_SECRET", "MYSQL_DSN", "MONGO_URI", "MONGO_DB_NAME"}

// Load reads the env file named by START (.env-local or .env.docker from
// start.sh), falling back to .env, then builds the Config from the
// process environment. Variables already set win over the file.
func Load() (*Config, error) {
	file := os.Getenv("START")
	if err := godotenv.Load(orDefault(file, ".env")); err != nil {
		if file != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("env file: %w", err)
		}
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	var errs []error
	for _, key := range required {
		if strings.TrimSpace(getenv(key)) == "" {
			errs = append(errs, fmt.Errorf("%s is not set in environment", key))
		}
	}

	cfg := &Config{
		JWTSecret:   getenv("JWT_SECRET"),
		MySQLDSN:    getenv("MYSQL_DSN"),
		MongoURI:    getenv("MONGO_URI"),
		MongoDBName: getenv("MONGO_DB_NAME"),
		HTTPAddr:    orDefault(getenv("HTTP_ADDR"), ":8082"),
		LogLevel:    orDefault(getenv("LOG_LEVEL"), "info"),
	}

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(orDefault(getenv("RATE_LIMIT_RPS"), "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be a positive number"))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(orDefault(getenv("RATE_LIMIT_BURST"), "20")); err != nil || cfg.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be a positive integer"))
	}
	if cfg.TokenTTL, err = time.ParseDuration(orDefault(getenv("TOKEN_TTL"), "1h")); err != nil || cfg.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be a positive duration"))
	}

	if cfg.TrustedProxies, err = parseTrustedProxies(getenv("TRUSTED_PROXIES")); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseTrustedProxies reads a comma separated list of CIDRs or single
// addresses.
func parseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES entry %q: %w", item, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q: %w", item, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
