package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a server URL with a database name.
// An explicit database name replaces any path already present, and
// sslmode=disable is added when the URL does not set an sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("database URL is empty")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}

	if databaseName != "" {
		u.Path = "/" + databaseName
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// RedactURL hides the password component so URLs can be logged
func RedactURL(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
