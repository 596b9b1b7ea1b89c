package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/client"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/config"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/session"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

// annotationAuth marks commands that run without a session.
const annotationAuth = "auth"

// expiryWarning is how close to expiry a session must be to print a warning.
const expiryWarning = 5 * time.Minute

var (
	apiURLFlag string
	jsonOutput bool
	verbose    bool

	cfg       *config.Config
	logger    *slog.Logger
	apiClient client.DashboardClient
	publisher events.Publisher
)

// resolveAPIURL picks the backend address: --api-url, then
// DASHBOARD_API_URL, then the active remote, then the default.
func resolveAPIURL(c *config.Config) string {
	if apiURLFlag != "" {
		return apiURLFlag
	}
	if os.Getenv("DASHBOARD_API_URL") == "" {
		if u := activeProfile().URL; u != "" {
			return u
		}
	}
	return c.APIURL
}

// resolveToken prefers DASHBOARD_TOKEN over the active remote's token.
func resolveToken(c *config.Config) string {
	if c.Token != "" {
		return c.Token
	}
	return activeProfile().Token
}

// resolveNATSURL prefers DASHBOARD_NATS_URL over the active remote's.
func resolveNATSURL(c *config.Config) string {
	if c.NATSURL != "" {
		return c.NATSURL
	}
	return activeProfile().NATSURL
}

func needsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationAuth] == "none" {
			return false
		}
	}
	return true
}

var rootCmd = &cobra.Command{
	Use:          "ptadmin <command>",
	Short:        "Admin client for the prompt-tracker service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		token := resolveToken(cfg)
		if needsSession(cmd) {
			info, err := session.Check(token, time.Now())
			if err != nil {
				return err
			}
			if info != nil && !info.ExpiresAt.IsZero() && info.Remaining(time.Now()) < expiryWarning {
				logger.Warn("session expires soon", "expires_at", info.ExpiresAt.Local().Format(time.DateTime))
			}
		}

		apiClient = client.NewHTTPClient(resolveAPIURL(cfg), token,
			client.WithTimeout(cfg.RequestTimeout),
			client.WithLogger(logger),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if publisher != nil {
			_ = publisher.Close()
			publisher = nil
		}
	},
}

// changePublisher connects to NATS on first use. Without a NATS URL changes
// are dropped.
func changePublisher() events.Publisher {
	if publisher != nil {
		return publisher
	}
	publisher = &events.NoopPublisher{}
	if u := resolveNATSURL(cfg); u != "" {
		p, err := events.DialNATS(u)
		if err != nil {
			logger.Warn("change events disabled", "nats_url", u, "error", err)
			return publisher
		}
		publisher = p
	}
	return publisher
}

// announce publishes a record change so open watchers refresh. Failures are
// logged, never returned: the mutation itself already succeeded.
func announce(ctx context.Context, screenName, action, id string) {
	err := events.PublishChange(ctx, changePublisher(), events.Change{Screen: screenName, Action: action, ID: id})
	if err != nil {
		logger.Warn("publishing change", "screen", screenName, "action", action, "id", id, "error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "API base URL (default: $DASHBOARD_API_URL or the active remote)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests")

	rootCmd.AddGroup(
		&cobra.Group{ID: "screens", Title: "Screens:"},
		&cobra.Group{ID: "reports", Title: "Reports:"},
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Screens
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(billingCmd)

	// Reports
	rootCmd.AddCommand(analyticsCmd)

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// System
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(screensCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
