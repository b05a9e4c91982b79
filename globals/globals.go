package globals

import (
	"context"
	"os"
)

var (
	JwtSecret = []byte(Getenv("JWT_SECRET", "your_secret_key"))

	// Shared secret used to verify payment gateway completion callbacks.
	GatewayKey    = Getenv("GATEWAY_KEY", "rzp_test_kiFCc60mzpGtPq")
	GatewaySecret = []byte(Getenv("GATEWAY_SECRET", "gateway_test_secret"))
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"

var Ctx = context.Background()

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
