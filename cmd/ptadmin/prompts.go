package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/export"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

var promptsLister = lister[*model.Prompt]{
	desc: screen.Prompts,
	load: func(ctx context.Context, params query.Params) ([]*model.Prompt, int, error) {
		p, err := apiClient.ListPrompts(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		return p.Prompts, p.Total, nil
	},
	render: printPromptsTable,
	table:  export.Prompts,
	exportRaw: func(ctx context.Context, params query.Params) ([]byte, error) {
		return apiClient.ExportPrompts(ctx, params)
	},
}

var promptsCmd = &cobra.Command{
	Use:     "prompts",
	Short:   "Review captured AI prompts",
	GroupID: "screens",
}

var promptShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a prompt and its response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := apiClient.GetPrompt(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting prompt: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), p, printPrompt)
	},
}

var promptFlagCmd = &cobra.Command{
	Use:   "flag <id>",
	Short: "Flag a prompt with a risk level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := cmd.Flags().GetString("severity")
		sev := model.Severity(s)
		if !sev.IsValid() || sev == model.SeverityNone {
			return fmt.Errorf("invalid severity %q (must be low, medium or high)", s)
		}
		return updatePrompt(cmd, args[0], &model.PromptUpdate{IsFlagged: query.Ptr(true), FlagSeverity: &sev})
	},
}

var promptUnflagCmd = &cobra.Command{
	Use:   "unflag <id>",
	Short: "Clear a prompt's flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePrompt(cmd, args[0], &model.PromptUpdate{
			IsFlagged:    query.Ptr(false),
			FlagSeverity: query.Ptr(model.SeverityNone),
		})
	},
}

func updatePrompt(cmd *cobra.Command, id string, upd *model.PromptUpdate) error {
	p, err := apiClient.UpdatePrompt(cmd.Context(), id, upd)
	if err != nil {
		return fmt.Errorf("updating prompt: %w", err)
	}
	announce(cmd.Context(), screen.NamePrompts, events.ActionUpdated, id)
	return printRecord(cmd.OutOrStdout(), p, printPrompt)
}

var promptDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeletePrompt(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting prompt: %w", err)
		}
		announce(cmd.Context(), screen.NamePrompts, events.ActionDeleted, args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "prompt %s deleted\n", args[0])
		return nil
	},
}

var promptStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prompt risk statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := apiClient.PromptStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting prompt stats: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), s, printPromptStats)
	},
}

func init() {
	promptFlagCmd.Flags().String("severity", string(model.SeverityHigh), "risk level (low, medium, high)")

	promptsCmd.AddCommand(promptsLister.listCmd())
	promptsCmd.AddCommand(promptShowCmd)
	promptsCmd.AddCommand(promptFlagCmd)
	promptsCmd.AddCommand(promptUnflagCmd)
	promptsCmd.AddCommand(promptDeleteCmd)
	promptsCmd.AddCommand(promptStatsCmd)
	promptsCmd.AddCommand(promptsLister.exportCmd())
	promptsCmd.AddCommand(promptsLister.watchCmd())
}
