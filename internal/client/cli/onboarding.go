package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runOnboardingStatus(ctx context.Context) error {
	if err := c.onboarding.Load(ctx); err != nil {
		return err
	}

	if c.onboarding.HasCompletedOnboarding() {
		c.io.Println("Onboarding: completed")
		return nil
	}
	c.io.Println("Onboarding: not completed")
	c.io.Println("Run 'medportal onboarding complete' once your profile is set up.")
	return nil
}

// runOnboardingComplete сообщает серверу о прохождении онбординга,
// затем сохраняет локальный флаг
func (c *Cli) runOnboardingComplete(ctx context.Context) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	if err := c.apiClient.UpdateOnboarding(ctx, true); err != nil {
		return wrapSessionErr(err)
	}
	if err := c.onboarding.CompleteOnboarding(ctx); err != nil {
		return fmt.Errorf("onboarding saved on server, but not locally: %w", err)
	}

	c.io.Println("✓ Onboarding completed!")
	return nil
}
