package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/medportal/internal/models"
)

// runProfile печатает профиль. Без refresh профиль берется из access token,
// с refresh загружается с сервера.
func (c *Cli) runProfile(ctx context.Context, refresh bool) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	if refresh {
		if err := c.session.Refresh(ctx); err != nil {
			return wrapSessionErr(err)
		}
	} else {
		claims, err := c.auth.CurrentClaims(ctx)
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		if err := c.session.Seed(claims); err != nil {
			return err
		}
	}

	profile, err := c.session.Profile()
	if err != nil {
		return err
	}

	c.printProfile(profile)
	return nil
}

func (c *Cli) printWelcome(profile *models.Profile) {
	if profile == nil {
		c.io.Println("✓ Login successful!")
		return
	}
	c.io.Printf("✓ Welcome, %s!\n", profile.BasicInfo.FullName())
}

func (c *Cli) printProfile(p *models.Profile) {
	b := p.BasicInfo
	c.io.Println("=== Profile ===")
	c.io.Printf("Name:       %s\n", b.FullName())
	c.io.Printf("Email:      %s\n", b.Email)
	c.io.Printf("Role:       %s\n", b.Role)
	printOptional(c, "Phone:      %s\n", b.Phone)
	printOptional(c, "Location:   %s\n", b.Location)
	c.io.Printf("Onboarded:  %t\n", b.HasCompletedOnboarding)

	if m := p.MedicalInfo; m != nil {
		c.io.Println()
		c.io.Println("--- Medical ---")
		printOptional(c, "Date of birth:  %s\n", m.DateOfBirth)
		printOptional(c, "Gender:         %s\n", m.Gender)
		printOptional(c, "Blood type:     %s\n", m.BloodType)
		printOptional(c, "Allergies:      %s\n", strings.Join(m.Allergies, ", "))
		printOptional(c, "Conditions:     %s\n", strings.Join(m.Conditions, ", "))
		printOptional(c, "Medications:    %s\n", strings.Join(m.Medications, ", "))
		printOptional(c, "Specialization: %s\n", m.Specialization)
		printOptional(c, "License:        %s\n", m.LicenseNumber)
	}

	if h := p.HospitalInfo; h != nil {
		c.io.Println()
		c.io.Println("--- Hospital ---")
		printOptional(c, "Name:         %s\n", h.Name)
		printOptional(c, "Registration: %s\n", h.RegistrationNumber)
		printOptional(c, "Address:      %s\n", h.Address)
		printOptional(c, "Departments:  %s\n", strings.Join(h.Departments, ", "))
	}
}

func printOptional(c *Cli, format, value string) {
	if value == "" {
		return
	}
	c.io.Printf(format, value)
}
