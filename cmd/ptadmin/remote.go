package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/config"
)

// loadProfiles reads the remotes file from its default location.
func loadProfiles() (*config.Profiles, string, error) {
	path, err := config.ProfilesPath()
	if err != nil {
		return nil, "", err
	}
	p, err := config.LoadProfiles(path)
	return p, path, err
}

// editProfiles applies fn to the remotes file and saves it when fn succeeds.
func editProfiles(fn func(*config.Profiles) error) error {
	p, path, err := loadProfiles()
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return p.Save(path)
}

// storeToken saves token on the active remote and returns the remote's name.
func storeToken(apiURL, token string) (string, error) {
	var name string
	err := editProfiles(func(p *config.Profiles) error {
		name = p.SetToken(apiURL, token)
		return nil
	})
	return name, err
}

// activeProfile is read once per process. An unreadable file is logged and
// treated as having no active remote.
var activeProfile = sync.OnceValue(func() config.Profile {
	p, _, err := loadProfiles()
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring remotes file", "error", err)
		}
		return config.Profile{}
	}
	_, prof, _ := p.Current()
	return prof
})

// maskToken keeps a token's first 8 characters.
func maskToken(token string) string {
	if len(token) > 8 {
		return token[:8] + strings.Repeat("*", len(token)-8)
	}
	return token
}

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Manage named API remotes",
	GroupID: "system",
	// Remote subcommands only touch the local remotes file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or replace a named remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof := config.Profile{URL: args[1]}
		prof.Token, _ = cmd.Flags().GetString("token")
		prof.NATSURL, _ = cmd.Flags().GetString("nats")
		prof.Description, _ = cmd.Flags().GetString("description")

		if err := editProfiles(func(p *config.Profiles) error { return p.Put(args[0], prof) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q added (%s)\n", args[0], prof.URL)
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := editProfiles(func(p *config.Profiles) error { return p.Remove(args[0]) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q removed\n", args[0])
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remotes; * marks the active one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := loadProfiles()
		if err != nil {
			return err
		}
		if jsonOutput {
			masked := config.Profiles{Active: p.Active, Entries: make(map[string]config.Profile, len(p.Entries))}
			for name, prof := range p.Entries {
				prof.Token = maskToken(prof.Token)
				masked.Entries[name] = prof
			}
			return printJSON(cmd.OutOrStdout(), masked)
		}
		if len(p.Entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no remotes configured")
			return nil
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "  NAME\tURL\tTOKEN\tDESCRIPTION")
		for _, name := range p.Names() {
			prof := p.Entries[name]
			marker := "  "
			if name == p.Active {
				marker = "* "
			}
			token := prof.Token
			if len(token) > 8 {
				token = token[:8] + "..."
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", marker, name, prof.URL, token, prof.Description)
		}
		return tw.Flush()
	},
}

var remoteUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the active remote (no name clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := editProfiles(func(p *config.Profiles) error { return p.Use(name) }); err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "active remote cleared")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "active remote set to %q\n", name)
		}
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a remote (defaults to the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := loadProfiles()
		if err != nil {
			return err
		}
		name := p.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active remote; name one or run 'ptadmin remote use <name>'")
		}
		prof, ok := p.Entries[name]
		if !ok {
			return fmt.Errorf("%w %q", config.ErrUnknownProfile, name)
		}

		tw := newTable(cmd.OutOrStdout())
		active := ""
		if name == p.Active {
			active = " (active)"
		}
		fmt.Fprintf(tw, "name:\t%s%s\n", name, active)
		if prof.Description != "" {
			fmt.Fprintf(tw, "description:\t%s\n", prof.Description)
		}
		fmt.Fprintf(tw, "url:\t%s\n", prof.URL)
		if prof.Token != "" {
			fmt.Fprintf(tw, "token:\t%s\n", maskToken(prof.Token))
		}
		if prof.NATSURL != "" {
			fmt.Fprintf(tw, "nats_url:\t%s\n", prof.NATSURL)
		}
		return tw.Flush()
	},
}

func init() {
	remoteAddCmd.Flags().String("token", "", "bearer token")
	remoteAddCmd.Flags().String("nats", "", "NATS URL for change events")
	remoteAddCmd.Flags().String("description", "", "free-form note shown in list")

	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteRemoveCmd)
	remoteCmd.AddCommand(remoteListCmd)
	remoteCmd.AddCommand(remoteUseCmd)
	remoteCmd.AddCommand(remoteShowCmd)
}
