package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/medportal/internal/client/auth"
	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	var input auth.RegisterInput
	var err error

	if input.FirstName, err = c.readRequired("First name: ", "first name"); err != nil {
		return err
	}
	if input.LastName, err = c.readRequired("Last name: ", "last name"); err != nil {
		return err
	}
	if input.Email, err = c.readRequired("Email: ", "email"); err != nil {
		return err
	}
	if input.Location, err = c.readRequired("Location: ", "location"); err != nil {
		return err
	}
	if input.Role, err = c.readRole(); err != nil {
		return err
	}

	if input.Password, err = c.io.ReadPassword("Password (min 8 chars, letters and digits): "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if input.ConfirmPassword, err = c.io.ReadPassword("Confirm password: "); err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if input.Consents, err = c.readConsents(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Registering user...")

	resp, err := c.auth.Register(ctx, input)
	if err != nil {
		if c.printValidation(err) {
			return fmt.Errorf("registration form is invalid")
		}
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	if resp.UserID != "" {
		c.io.Printf("User ID: %s\n", resp.UserID)
	}
	if resp.Message != "" {
		c.io.Println(resp.Message)
	}
	c.io.Println()
	c.io.Println("Please run 'medportal login' to sign in.")

	return nil
}

// readRole предлагает выбрать роль по номеру или названию
func (c *Cli) readRole() (models.Role, error) {
	roles := models.Roles()
	c.io.Println("Account type:")
	for i, r := range roles {
		c.io.Printf("  %d) %s\n", i+1, r)
	}

	answer, err := c.io.ReadInput("Choose [1]: ")
	if err != nil {
		return "", fmt.Errorf("failed to read account type: %w", err)
	}
	if answer == "" {
		return roles[0], nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(roles) {
			return "", fmt.Errorf("account type must be between 1 and %d", len(roles))
		}
		return roles[n-1], nil
	}
	// Невалидная роль будет отклонена валидацией формы
	return models.Role(strings.ToLower(answer)), nil
}

func (c *Cli) readConsents() (api.Consents, error) {
	var consents api.Consents
	questions := []struct {
		dst    *bool
		prompt string
	}{
		{&consents.Terms, "I accept the terms of service"},
		{&consents.Privacy, "I accept the privacy policy"},
		{&consents.DataSharing, "I agree to share anonymised data for research"},
		{&consents.Marketing, "I would like to receive product updates"},
	}

	for _, q := range questions {
		ok, err := c.io.Confirm(q.prompt)
		if err != nil {
			return api.Consents{}, fmt.Errorf("failed to read consent: %w", err)
		}
		*q.dst = ok
	}
	return consents, nil
}
