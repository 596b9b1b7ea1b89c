package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/export"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

// clientDirectory maps client IDs to names for the users table. It is
// refreshed on every users load.
type clientDirectory struct {
	mu    sync.Mutex
	names map[string]string
}

func (d *clientDirectory) set(clients []*model.Client) {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
		if c.ClientID != "" {
			names[c.ClientID] = c.Name
		}
	}
	d.mu.Lock()
	d.names = names
	d.mu.Unlock()
}

func (d *clientDirectory) snapshot() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.names)
}

var userClients clientDirectory

// loadUsers fetches users and clients in parallel. The client list only
// labels rows, so failing to fetch it is logged and tolerated.
func loadUsers(ctx context.Context, _ query.Params) ([]*model.User, int, error) {
	var (
		users   []*model.User
		clients []*model.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = apiClient.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if clients, err = apiClient.ListClients(gctx); err != nil {
			logger.Warn("loading client names", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	userClients.set(clients)
	return users, len(users), nil
}

var usersLister = lister[*model.User]{
	desc: screen.Users,
	load: loadUsers,
	render: func(w io.Writer, users []*model.User) {
		printUsersTable(w, users, userClients.snapshot())
	},
	table: export.Users,
}

var usersCmd = &cobra.Command{
	Use:     "users",
	Short:   "Manage dashboard users",
	GroupID: "screens",
}

func parseUserID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func printUser(w io.Writer, u *model.User) {
	printUsersTable(w, []*model.User{u}, nil)
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &model.UserForm{Email: args[0]}
		form.FirstName, _ = cmd.Flags().GetString("first-name")
		form.LastName, _ = cmd.Flags().GetString("last-name")
		role, _ := cmd.Flags().GetString("role")
		form.Role = model.Role(role)
		form.ClientID, _ = cmd.Flags().GetString("client")
		form.Password, _ = cmd.Flags().GetString("password")
		if err := model.ValidateUserForm(form, true); err != nil {
			return err
		}

		u, err := apiClient.CreateUser(cmd.Context(), form)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		announce(cmd.Context(), screen.NameUsers, events.ActionCreated, strconv.Itoa(u.ID))
		return printRecord(cmd.OutOrStdout(), u, printUser)
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		upd := &model.UserUpdate{
			Email:     changedString(cmd, "email"),
			FirstName: changedString(cmd, "first-name"),
			LastName:  changedString(cmd, "last-name"),
			ClientID:  changedString(cmd, "client"),
			Password:  changedString(cmd, "password"),
		}
		if r := changedString(cmd, "role"); r != nil {
			upd.Role = query.Ptr(model.Role(*r))
		}
		if *upd == (model.UserUpdate{}) {
			return fmt.Errorf("nothing to update")
		}
		if err := model.ValidateUserUpdate(upd); err != nil {
			return err
		}

		u, err := apiClient.UpdateUser(cmd.Context(), id, upd)
		if err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		announce(cmd.Context(), screen.NameUsers, events.ActionUpdated, args[0])
		return printRecord(cmd.OutOrStdout(), u, printUser)
	},
}

func userActionCmd(use, short, action string, do func(ctx context.Context, id int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if err := do(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s user: %w", use, err)
			}
			announce(cmd.Context(), screen.NameUsers, action, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "user %d %s\n", id, action)
			return nil
		},
	}
}

func init() {
	userCreateCmd.Flags().String("first-name", "", "first name")
	userCreateCmd.Flags().String("last-name", "", "last name")
	userCreateCmd.Flags().String("role", string(model.RoleUser), "role (admin, user, readonly)")
	userCreateCmd.Flags().String("client", "", "client the user belongs to")
	userCreateCmd.Flags().String("password", "", "initial password")

	userUpdateCmd.Flags().String("email", "", "new email")
	userUpdateCmd.Flags().String("first-name", "", "new first name")
	userUpdateCmd.Flags().String("last-name", "", "new last name")
	userUpdateCmd.Flags().String("role", "", "new role (admin, user, readonly)")
	userUpdateCmd.Flags().String("client", "", "new client")
	userUpdateCmd.Flags().String("password", "", "new password")

	usersCmd.AddCommand(usersLister.listCmd())
	usersCmd.AddCommand(userCreateCmd)
	usersCmd.AddCommand(userUpdateCmd)
	usersCmd.AddCommand(userActionCmd("delete", "Delete a user", events.ActionDeleted,
		func(ctx context.Context, id int) error { return apiClient.DeleteUser(ctx, id) }))
	usersCmd.AddCommand(userActionCmd("activate", "Activate a user", events.ActionActivated,
		func(ctx context.Context, id int) error { return apiClient.ActivateUser(ctx, id) }))
	usersCmd.AddCommand(userActionCmd("deactivate", "Deactivate a user", events.ActionDeactivated,
		func(ctx context.Context, id int) error { return apiClient.DeactivateUser(ctx, id) }))
	usersCmd.AddCommand(usersLister.exportCmd())
	usersCmd.AddCommand(usersLister.watchCmd())
}
