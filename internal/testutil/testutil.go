package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"orderingRoles/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so every pooled connection sees the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT carrying the claims the app reads.
// A zero exp omits the expiry claim.
func GenerateJWTHS256(t *testing.T, secret, email, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// OutgoingBearer is CtxWithBearer for client-side calls.
func OutgoingBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

// GenerateIDToken returns an identity-provider ID token for email.
// extra claims (e.g. email_verified) are merged in.
func GenerateIDToken(t *testing.T, secret, issuer, email string, exp time.Time, extra map[string]any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   exp.Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	for k, v := range extra {
		claims[k] = v
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return s
}
