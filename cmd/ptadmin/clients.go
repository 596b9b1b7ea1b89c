package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/export"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

var clientsLister = lister[*model.Client]{
	desc: screen.Clients,
	load: func(ctx context.Context, _ query.Params) ([]*model.Client, int, error) {
		clients, err := apiClient.ListClients(ctx)
		return clients, len(clients), err
	},
	render: printClientsTable,
	table:  export.Clients,
}

var clientsCmd = &cobra.Command{
	Use:     "clients",
	Short:   "Manage client organizations",
	GroupID: "screens",
}

var clientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient.GetClient(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting client: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), c, printClient)
	},
}

var clientCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &model.ClientForm{Name: args[0]}
		form.Description, _ = cmd.Flags().GetString("description")
		form.ContactEmail, _ = cmd.Flags().GetString("email")
		form.ContactPhone, _ = cmd.Flags().GetString("phone")
		if err := model.ValidateClientForm(form); err != nil {
			return err
		}

		c, err := apiClient.CreateClient(cmd.Context(), form)
		if err != nil {
			return fmt.Errorf("creating client: %w", err)
		}
		announce(cmd.Context(), screen.NameClients, events.ActionCreated, c.ID)
		return printRecord(cmd.OutOrStdout(), c, printClient)
	},
}

var clientUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		upd := &model.ClientUpdate{
			Name:         changedString(cmd, "name"),
			Description:  changedString(cmd, "description"),
			ContactEmail: changedString(cmd, "email"),
			ContactPhone: changedString(cmd, "phone"),
		}
		if upd.Name == nil && upd.Description == nil && upd.ContactEmail == nil && upd.ContactPhone == nil {
			return fmt.Errorf("nothing to update")
		}
		if err := model.ValidateClientUpdate(upd); err != nil {
			return err
		}

		c, err := apiClient.UpdateClient(cmd.Context(), args[0], upd)
		if err != nil {
			return fmt.Errorf("updating client: %w", err)
		}
		announce(cmd.Context(), screen.NameClients, events.ActionUpdated, args[0])
		return printRecord(cmd.OutOrStdout(), c, printClient)
	},
}

// clientActionCmd builds a command that applies one id-only mutation.
func clientActionCmd(use, short, action string, do func(ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := do(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s client: %w", use, err)
			}
			announce(cmd.Context(), screen.NameClients, action, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "client %s %s\n", args[0], action)
			return nil
		},
	}
}

// changedString returns a pointer to the flag's value when it was given.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// printRecord prints v as JSON or with the given detail printer.
func printRecord[T any](w io.Writer, v T, detail func(io.Writer, T)) error {
	if jsonOutput {
		return printJSON(w, v)
	}
	detail(w, v)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{clientCreateCmd, clientUpdateCmd} {
		c.Flags().StringP("description", "d", "", "description")
		c.Flags().String("email", "", "contact email")
		c.Flags().String("phone", "", "contact phone")
	}
	clientUpdateCmd.Flags().String("name", "", "new name")

	clientsCmd.AddCommand(clientsLister.listCmd())
	clientsCmd.AddCommand(clientShowCmd)
	clientsCmd.AddCommand(clientCreateCmd)
	clientsCmd.AddCommand(clientUpdateCmd)
	clientsCmd.AddCommand(clientActionCmd("delete", "Delete a client", events.ActionDeleted,
		func(ctx context.Context, id string) error { return apiClient.DeleteClient(ctx, id) }))
	clientsCmd.AddCommand(clientActionCmd("activate", "Activate a client", events.ActionActivated,
		func(ctx context.Context, id string) error { return apiClient.ActivateClient(ctx, id) }))
	clientsCmd.AddCommand(clientActionCmd("deactivate", "Deactivate a client", events.ActionDeactivated,
		func(ctx context.Context, id string) error { return apiClient.DeactivateClient(ctx, id) }))
	clientsCmd.AddCommand(clientsLister.exportCmd())
	clientsCmd.AddCommand(clientsLister.watchCmd())
}
