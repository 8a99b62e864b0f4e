package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/internal/client/token"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	claims, err := c.auth.CurrentClaims(ctx)
	if errors.Is(err, storage.ErrTokenNotFound) || errors.Is(err, token.ErrDecode) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'medportal login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	info := claims.UserData.BasicInfo
	expiresAt := claims.Expiry()
	remaining := time.Until(expiresAt)

	c.io.Println("Status: Authenticated")
	c.io.Printf("User: %s <%s>\n", info.FullName(), info.Email)
	c.io.Printf("Role: %s\n", info.Role)
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

	if remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("⚠️  Access token has expired. It will be refreshed on the next request.")
	}

	c.io.Printf("Home: %s\n", navigation.HomePath(info))
	return nil
}
