// Command tokengen mints a signed bearer token for a family member so
// operators can provision access without a full identity round trip.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/waltmayfield/home-child/internal/auth"
	"github.com/waltmayfield/home-child/internal/config"
)

func main() {
	subject := flag.String("subject", "", "user identifier placed in the sub claim")
	familyID := flag.String("family", "", "family identifier the token is scoped to")
	scopes := flag.String("scopes", defaultScopes(), "comma-separated OAuth scopes")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" || *familyID == "" {
		log.Fatal("both -subject and -family are required")
	}

	cfg := config.Load()

	scopeList := make([]string, 0)
	for _, scope := range strings.Split(*scopes, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" {
			scopeList = append(scopeList, scope)
		}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":       cfg.JWTIssuer,
		"sub":       *subject,
		"family_id": *familyID,
		"scopes":    scopeList,
		"iat":       now.Unix(),
		"exp":       now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(signed)
}

func defaultScopes() string {
	return strings.Join([]string{
		auth.ScopeActivitiesRead,
		auth.ScopeActivitiesWrite,
		auth.ScopeChildrenRead,
		auth.ScopeChildrenWrite,
	}, ",")
}
