package cli

import (
	"context"
	"fmt"

	"github.com/existflow/ironmeet/internal/client"
	"github.com/spf13/cobra"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Show your plan on the server",
	RunE:  runBilling,
}

func runBilling(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	if !c.IsLoggedIn() {
		return client.ErrNotLoggedIn
	}

	s, err := c.Billing(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load billing: %w", err)
	}

	status := s.Status
	if status == "" {
		status = "none"
	}
	fmt.Printf("Plan:   %s\n", s.Plan)
	fmt.Printf("Status: %s\n", status)
	if s.Paid {
		fmt.Println("✅ Paid features enabled")
	} else {
		fmt.Println("Free plan")
	}
	return nil
}
