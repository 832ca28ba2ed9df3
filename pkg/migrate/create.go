package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateOptions tunes the generated migration skeleton.
type CreateOptions struct {
	// StoreScoped writes one statement block per store table set so both
	// stores receive the same change.
	StoreScoped bool
	Now         func() time.Time
}

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<name>.sql with goose
// markers and returns its path.
func CreateSQLMigration(dir, name string, opts CreateOptions) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeMigrationName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now().UTC().Format("20060102150405"), safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	if err := os.WriteFile(fullpath, []byte(migrationSkeleton(safe, opts.StoreScoped)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeMigrationName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func migrationSkeleton(name string, storeScoped bool) string {
	prefixes := []string{""}
	if storeScoped {
		prefixes = prefixes[:0]
		for _, store := range enums.StoreIDs() {
			prefixes = append(prefixes, store.TablePrefix())
		}
	}

	var b strings.Builder
	for _, section := range []string{"Up", "Down"} {
		fmt.Fprintf(&b, "-- +goose %s\n", section)
		for _, prefix := range prefixes {
			b.WriteString("-- +goose StatementBegin\n")
			if section == "Up" {
				fmt.Fprintf(&b, "-- %s%s\n", prefix, name)
			} else {
				fmt.Fprintf(&b, "-- rollback %s%s\n", prefix, name)
			}
			b.WriteString("-- +goose StatementEnd\n")
		}
		if section == "Up" {
			b.WriteString("\n")
		}
	}
	return b.String()
}
