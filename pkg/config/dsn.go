package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const defaultPostgresPort = 5432

// ParsedDatabaseURL is a postgres URL broken into libpq keywords
type ParsedDatabaseURL struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Options  map[string]string
}

// ParseDatabaseURL accepts postgres:// and postgresql:// URLs.
// Port falls back to 5432 and sslmode to "disable".
func ParseDatabaseURL(rawURL string) (*ParsedDatabaseURL, error) {
	if rawURL == "" {
		return nil, errors.New("database URL is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid database URL scheme %q (expected postgres or postgresql)", u.Scheme)
	}

	port := defaultPostgresPort
	if raw := u.Port(); raw != "" {
		if port, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid port in database URL: %w", err)
		}
	}

	parsed := &ParsedDatabaseURL{
		Host:     u.Hostname(),
		Port:     port,
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  "disable",
		Options:  make(map[string]string),
	}
	if u.User != nil {
		parsed.User = u.User.Username()
		parsed.Password, _ = u.User.Password()
	}

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "sslmode" {
			parsed.SSLMode = values[0]
			continue
		}
		parsed.Options[key] = values[0]
	}

	return parsed, nil
}

// ToDSN renders a libpq keyword/value string. Options follow the core
// keywords in sorted order so the output is stable.
func (p *ParsedDatabaseURL) ToDSN() string {
	pairs := []string{
		"host=" + quoteDSNValue(p.Host),
		"port=" + strconv.Itoa(p.Port),
		"user=" + quoteDSNValue(p.User),
		"password=" + quoteDSNValue(p.Password),
		"dbname=" + quoteDSNValue(p.Database),
		"sslmode=" + quoteDSNValue(p.SSLMode),
	}

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+"="+quoteDSNValue(p.Options[k]))
	}

	return strings.Join(pairs, " ")
}

// quoteDSNValue single-quotes values that libpq would otherwise split
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
