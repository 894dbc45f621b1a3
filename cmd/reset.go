package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the study plan",
	Long: `Remove the current study plan and any pending plan text. With --all,
recorded task completion and LLM events are removed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		all, _ := cmd.Flags().GetBool("all")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		e.plans.Set(ctx, nil)
		e.plans.SetRawPlan(ctx, "")
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Study plan removed.")

		if !all {
			return nil
		}
		if err := e.store.CompletionRepo().Clear(ctx); err != nil {
			return fmt.Errorf("clear completion: %w", err)
		}
		if err := e.store.EventRepo().ClearLLMEvents(ctx); err != nil {
			return fmt.Errorf("clear LLM events: %w", err)
		}
		fmt.Fprintln(out, "Task completion and LLM events removed.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Also remove task completion and LLM events")
}
