// Command issuetoken signs an access token for a resident, for the chat
// front-end or for manual testing.
//
//	issuetoken --user 123456 --role ADMIN --ttl 720h
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iliyamo/dorm-booking/internal/config"
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	user := pflag.Uint64P("user", "u", 0, "resident id (required)")
	role := pflag.StringP("role", "r", model.RoleResident, "RESIDENT or ADMIN")
	ttl := pflag.Duration("ttl", cfg.AccessTokenTTL, "token lifetime")
	pflag.Parse()

	r := strings.ToUpper(*role)
	switch {
	case cfg.JWTSecret == "":
		fail("JWT_SECRET is not set")
	case *user == 0:
		fail("--user is required")
	case r != model.RoleResident && r != model.RoleAdmin:
		fail("--role must be RESIDENT or ADMIN")
	case *ttl <= 0:
		fail("--ttl must be positive")
	}

	tok, err := utils.NewAccessToken(cfg.JWTSecret, *user, r, *ttl)
	if err != nil {
		fail(err.Error())
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format("2006-01-02 15:04:05 MST"))
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "issuetoken:", msg)
	pflag.Usage()
	os.Exit(2)
}
