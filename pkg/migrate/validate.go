package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

var (
	sqlFileRe       = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	storeRelationRe = regexp.MustCompile(`\bstore(\d+)_([a-z0-9_]+)`)
)

// ValidateDir checks migration filenames, goose markers and that every
// store-prefixed relation touched by a file is touched for all stores.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateMigration(name, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func validateMigration(name, txt string) error {
	if !strings.Contains(txt, "-- +goose Up") {
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	}
	if !strings.Contains(txt, "-- +goose Down") {
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin but %d StatementEnd", name, begins, ends)
	}
	return checkStoreParity(name, txt)
}

func checkStoreParity(name, txt string) error {
	byStore := map[string]map[string]struct{}{}
	relations := map[string]struct{}{}
	for _, m := range storeRelationRe.FindAllStringSubmatch(txt, -1) {
		if byStore[m[1]] == nil {
			byStore[m[1]] = map[string]struct{}{}
		}
		byStore[m[1]][m[2]] = struct{}{}
		relations[m[2]] = struct{}{}
	}
	if len(relations) == 0 {
		return nil
	}

	var missing []string
	for _, store := range enums.StoreIDs() {
		touched := byStore[store.String()]
		for rel := range relations {
			if _, ok := touched[rel]; !ok {
				missing = append(missing, store.TablePrefix()+rel)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("migration %q changes store tables unevenly; missing %s", name, strings.Join(missing, ", "))
	}
	return nil
}
