package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/eliteacai/pdv-backend/pkg/auth"
	"github.com/eliteacai/pdv-backend/pkg/config"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

// operator-token mints a bearer token for a terminal operator. It stands in
// for the permissions service on local and staging terminals.
func main() {
	code := flag.String("code", "", "operator code (ADMIN bypasses permission checks)")
	name := flag.String("name", "", "operator display name")
	perms := flag.String("perms", "", "comma-separated permissions (can_view_sales,can_view_orders,can_view_cash_register)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "operator-token"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if strings.TrimSpace(*code) == "" {
		logg.Error(ctx, "missing operator code", fmt.Errorf("-code is required"))
		os.Exit(1)
	}

	permissions, err := parsePermissions(*perms)
	if err != nil {
		logg.Error(ctx, "invalid permissions", err)
		os.Exit(1)
	}

	token, err := auth.MintOperatorToken(cfg.JWT, time.Now(), auth.Operator{
		ID:          uuid.New(),
		Code:        strings.TrimSpace(*code),
		Name:        strings.TrimSpace(*name),
		Permissions: permissions,
	})
	if err != nil {
		logg.Error(ctx, "failed to mint operator token", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

func parsePermissions(raw string) ([]enums.Permission, error) {
	var out []enums.Permission
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		perm, err := enums.ParsePermission(part)
		if err != nil {
			return nil, err
		}
		out = append(out, perm)
	}
	return out, nil
}
