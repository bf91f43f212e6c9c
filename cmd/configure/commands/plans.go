package commands

import (
	"fmt"

	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/plans"
	"github.com/spf13/cobra"
)

// NewPlansCmd creates the plans command
func NewPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans <file>",
		Short: "Validate a plan table file",
		Long:  "Parse a plan table YAML file and print the capabilities of each plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := plans.Load(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan file: %w", err)
			}

			fmt.Printf("Plan file OK (default plan: %s)\n\n", table.DefaultPlan)
			for plan := range table.Plans {
				fs := table.Evaluate(plan, models.Usage{})
				fmt.Printf("  - Plan: %s\n", plan)
				fmt.Printf("    Create brains: %v\n", fs.CanCreateBrains)
				fmt.Printf("    Share brains: %v\n", fs.CanShareBrains)
				fmt.Printf("    Upload documents: %v\n", fs.CanUploadDocuments)
				fmt.Printf("    Image analysis: %v\n", fs.CanUseImageAnalysis)
				fmt.Printf("    Advanced AI: %v\n", fs.CanUseAdvancedAI)
				if fs.MaxBrains != nil {
					fmt.Printf("    Max brains: %d\n", *fs.MaxBrains)
				} else {
					fmt.Println("    Max brains: unlimited")
				}
				if fs.MaxAPICalls != nil {
					fmt.Printf("    Max API calls: %d\n", *fs.MaxAPICalls)
				} else {
					fmt.Println("    Max API calls: unlimited")
				}
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
