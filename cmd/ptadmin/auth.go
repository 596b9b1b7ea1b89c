package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/session"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

var noSession = map[string]string{annotationAuth: "none"}

// readSecret returns the flag value, or prompts for it without echo when
// stdin is a terminal.
func readSecret(cmd *cobra.Command, flag, prompt string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	if !ui.IsTerminal(os.Stdin) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", flag, err)
	}
	return string(b), nil
}

var loginCmd = &cobra.Command{
	Use:         "login <email>",
	Short:       "Log in and save the session token",
	GroupID:     "session",
	Args:        cobra.ExactArgs(1),
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readSecret(cmd, "password", "Password: ")
		if err != nil {
			return err
		}
		creds := &model.Credentials{Email: strings.TrimSpace(args[0]), Password: password}
		if err := model.ValidateCredentials(creds); err != nil {
			return err
		}

		res, err := apiClient.Login(cmd.Context(), creds)
		if err != nil {
			return fmt.Errorf("logging in: %w", err)
		}
		if res.AccessToken == "" {
			return errors.New("logging in: no access token in response")
		}
		remote, err := storeToken(resolveAPIURL(cfg), res.AccessToken)
		if err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s) on remote %q\n", res.User.Email, res.User.Role, remote)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:         "register <email>",
	Short:       "Create an account",
	GroupID:     "session",
	Args:        cobra.ExactArgs(1),
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := &model.Registration{Email: strings.TrimSpace(args[0])}
		reg.FirstName, _ = cmd.Flags().GetString("first-name")
		reg.LastName, _ = cmd.Flags().GetString("last-name")
		reg.Role, _ = cmd.Flags().GetString("role")

		var err error
		if reg.Password, err = readSecret(cmd, "password", "Password: "); err != nil {
			return err
		}
		confirm, _ := cmd.Flags().GetString("confirm")
		if confirm == "" && !cmd.Flags().Changed("password") {
			if confirm, err = readSecret(cmd, "confirm", "Confirm password: "); err != nil {
				return err
			}
		}
		if err := model.ValidateRegistration(reg, confirm); err != nil {
			return err
		}

		u, err := apiClient.Register(cmd.Context(), reg)
		if err != nil {
			return fmt.Errorf("registering: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), u)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s; run 'ptadmin login %s'\n", u.Email, u.Email)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:         "refresh <refresh-token>",
	Short:       "Exchange a refresh token for a new session token",
	GroupID:     "session",
	Args:        cobra.ExactArgs(1),
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := apiClient.RefreshToken(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("refreshing token: %w", err)
		}
		remote, err := storeToken(resolveAPIURL(cfg), res.AccessToken)
		if err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session refreshed on remote %q (expires in %s)\n",
			remote, time.Duration(res.ExpiresIn)*time.Second)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Forget the saved session token",
	GroupID:     "session",
	Args:        cobra.NoArgs,
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		if activeProfile().Token == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
		} else {
			remote, err := storeToken(resolveAPIURL(cfg), "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged out of remote %q\n", remote)
		}
		if cfg.Token != "" {
			logger.Warn("DASHBOARD_TOKEN is still set and will be used")
		}
		return nil
	},
}

func printSession(w io.Writer, info *session.Info) {
	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "User:\t%s\n", orDash(info.Subject))
	fmt.Fprintf(tw, "Email:\t%s\n", orDash(info.Email))
	fmt.Fprintf(tw, "Role:\t%s\n", orDash(info.Role))
	if !info.IssuedAt.IsZero() {
		fmt.Fprintf(tw, "Issued:\t%s\n", formatTime(info.IssuedAt))
	}
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Fprintf(tw, "Expires:\tnever\n")
	case info.Expired(now):
		fmt.Fprintf(tw, "Expires:\t%s (expired)\n", formatTime(info.ExpiresAt))
	default:
		fmt.Fprintf(tw, "Expires:\t%s (in %s)\n", formatTime(info.ExpiresAt), info.Remaining(now).Round(time.Second))
	}
	tw.Flush()
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the logged-in user from the session token",
	GroupID:     "session",
	Args:        cobra.NoArgs,
	Annotations: noSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := resolveToken(cfg)
		if token == "" {
			return session.ErrNoToken
		}
		info, err := session.Inspect(token)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "token %s is not a JWT; nothing to show\n", maskToken(token))
			return nil
		}
		return printRecord(cmd.OutOrStdout(), info, printSession)
	},
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")

	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("role", "", "requested role")
	registerCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().String("confirm", "", "password again")
}
