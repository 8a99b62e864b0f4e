package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogin(ctx context.Context, email string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	var err error
	if email == "" {
		if email, err = c.readRequired("Email: ", "email"); err != nil {
			return err
		}
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	result, err := c.auth.Login(ctx, email, password)
	if err != nil {
		if c.printValidation(err) {
			return fmt.Errorf("login form is invalid")
		}
		return err
	}

	c.io.Println()
	if result.RequireOTP {
		c.describeNext(result.NextPath)
		return nil
	}

	c.printWelcome(result.Profile)
	c.describeNext(result.NextPath)
	return nil
}

func (c *Cli) runVerify(ctx context.Context, code string) error {
	c.io.Println("=== Verify Login ===")
	c.io.Println()

	var err error
	if code == "" {
		if code, err = c.readRequired("Verification code: ", "verification code"); err != nil {
			return err
		}
	}

	result, err := c.auth.VerifyOTP(ctx, code)
	if err != nil {
		if c.printValidation(err) {
			return fmt.Errorf("verification code is invalid")
		}
		return err
	}

	c.io.Println()
	c.printWelcome(result.Profile)
	c.describeNext(result.NextPath)
	return nil
}
