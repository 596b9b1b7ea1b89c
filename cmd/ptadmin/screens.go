package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/export"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/fetch"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
)

// page is one rendered page of a list screen.
type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// lister binds a screen descriptor to the API call that feeds it and to its
// table and CSV renderings.
type lister[T any] struct {
	desc screen.Descriptor[T]

	// load fetches records. Server-paged screens return one page and the
	// total; the others return the whole collection and ignore params.
	load func(ctx context.Context, params query.Params) ([]T, int, error)

	render func(w io.Writer, items []T)
	table  func(items []T) export.Table

	// exportRaw, when set, asks the server for the CSV of the whole
	// filtered view of a server-paged screen.
	exportRaw func(ctx context.Context, params query.Params) ([]byte, error)
}

// fetcher returns the orchestrator fetch func for st.
func (l lister[T]) fetcher(st query.State) fetch.Func[page[T]] {
	return func(ctx context.Context, params query.Params) (page[T], error) {
		items, total, err := l.load(ctx, params)
		if err != nil {
			return page[T]{}, err
		}
		if l.desc.ServerPaged {
			return page[T]{Items: items, Total: total}, nil
		}
		p, n := l.desc.View(items, st)
		return page[T]{Items: p, Total: n}, nil
	}
}

func (l lister[T]) orchestrator(opts ...fetch.Option[page[T]]) *fetch.Orchestrator[page[T]] {
	return fetch.New[page[T]](l.desc.Schema, append([]fetch.Option[page[T]]{fetch.WithLogger[page[T]](logger)}, opts...)...)
}

// show prints a page as JSON or as a table with a pagination footer.
func (l lister[T]) show(w io.Writer, p page[T], st query.State) error {
	if jsonOutput {
		return printJSON(w, p)
	}
	l.render(w, p.Items)
	printFooter(w, st, len(p.Items), p.Total)
	return nil
}

// snapshotError turns a failed snapshot into the error the command returns.
func snapshotError[T any](s fetch.Snapshot[T]) error {
	if s.Status != fetch.Failure {
		return nil
	}
	return errors.New(s.Message)
}

func (l lister[T]) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + l.desc.Schema.Name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := listState(cmd, l.desc.Schema)
			if err != nil {
				return err
			}
			snap, _ := l.orchestrator().Run(cmd.Context(), st, l.fetcher(st))
			if err := snapshotError(snap); err != nil {
				return err
			}
			return l.show(cmd.OutOrStdout(), snap.Data, st)
		},
	}
	addQueryFlags(cmd, l.desc.Schema)
	return cmd
}

// renderWatch prints each refreshed page to out and each failure to errOut.
// Failures after ctx is done are the interrupted refresh and stay silent.
func (l lister[T]) renderWatch(ctx context.Context, out, errOut io.Writer, st query.State) func(fetch.Snapshot[page[T]]) {
	return func(s fetch.Snapshot[page[T]]) {
		switch s.Status {
		case fetch.Success:
			fmt.Fprintf(out, "\n%s\n", time.Now().Format(time.TimeOnly))
			if err := l.show(out, s.Data, st); err != nil {
				logger.Warn("rendering page", "error", err)
			}
		case fetch.Failure:
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(errOut, "Error: %s\n", s.Message)
		}
	}
}

func (l lister[T]) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "List " + l.desc.Schema.Name + " and refresh on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := listState(cmd, l.desc.Schema)
			if err != nil {
				return err
			}
			interval, _ := cmd.Flags().GetDuration("interval")
			if !cmd.Flags().Changed("interval") {
				interval = cfg.WatchInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			o := l.orchestrator(fetch.WithOnChange(l.renderWatch(ctx, cmd.OutOrStdout(), os.Stderr, st)))

			w := &events.Watcher{
				Screen:   l.desc.Schema.Name,
				Interval: interval,
				Logger:   logger,
			}
			if u := resolveNATSURL(cfg); u != "" {
				sub, err := events.DialNATS(u,
					nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
						logger.Warn("nats disconnected", "error", err)
					}),
					nats.ReconnectHandler(func(_ *nats.Conn) {
						logger.Info("nats reconnected")
					}),
				)
				if err != nil {
					logger.Warn("change events unavailable, polling", "nats_url", u, "error", err)
				} else {
					defer sub.Close()
					w.Sub = sub
				}
			}

			return w.Run(ctx, func(ctx context.Context) {
				o.Run(ctx, st, l.fetcher(st))
			})
		},
	}
	addQueryFlags(cmd, l.desc.Schema)
	cmd.Flags().Duration("interval", 30*time.Second, "poll interval when change events are unavailable (default: $DASHBOARD_WATCH_INTERVAL)")
	return cmd
}

// exportTable renders the whole filtered view of a client-paged screen,
// ignoring paging.
func (l lister[T]) exportTable(ctx context.Context, st query.State) (export.Table, error) {
	items, _, err := l.load(ctx, nil)
	if err != nil {
		return export.Table{}, err
	}
	return l.table(l.desc.Filterer.Apply(items, st)), nil
}

// pageTable renders the current page only.
func (l lister[T]) pageTable(ctx context.Context, st query.State) (export.Table, error) {
	snap, _ := l.orchestrator().Run(ctx, st, l.fetcher(st))
	if err := snapshotError(snap); err != nil {
		return export.Table{}, err
	}
	return l.table(snap.Data.Items), nil
}

// writeExport writes the screen's CSV to dest and returns where it went.
// Server-paged screens export through the server so the file covers every
// page, not just the one fetched.
func (l lister[T]) writeExport(ctx context.Context, dest export.Destination, name string, st query.State, pageOnly bool) (string, error) {
	if pageOnly {
		t, err := l.pageTable(ctx, st)
		if err != nil {
			return "", err
		}
		return export.Save(ctx, dest, name, t)
	}
	if l.desc.ServerPaged {
		if l.exportRaw == nil {
			return "", fmt.Errorf("%s cannot be exported", l.desc.Schema.Name)
		}
		data, err := l.exportRaw(ctx, query.FilterParams(l.desc.Schema, st))
		if err != nil {
			return "", err
		}
		return dest.Write(ctx, name, data)
	}
	t, err := l.exportTable(ctx, st)
	if err != nil {
		return "", err
	}
	return export.Save(ctx, dest, name, t)
}

func (l lister[T]) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered " + l.desc.Schema.Name + " as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := listState(cmd, l.desc.Schema)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("out")
			toS3, _ := cmd.Flags().GetBool("s3")
			pageOnly, _ := cmd.Flags().GetBool("page-only")

			ctx := cmd.Context()
			dest, err := exportDestination(ctx, dir, toS3)
			if err != nil {
				return err
			}

			name := export.FileName(l.desc.Schema.Name, time.Now())
			if toS3 {
				// Objects are never overwritten; local files are.
				if name, err = export.UniqueFileName(l.desc.Schema.Name, time.Now()); err != nil {
					return err
				}
			}
			where, err := l.writeExport(ctx, dest, name, st, pageOnly)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", l.desc.Schema.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", l.desc.Schema.Name, where)
			return nil
		},
	}
	addQueryFlags(cmd, l.desc.Schema)
	cmd.Flags().StringP("out", "o", ".", "directory to write the CSV file to")
	cmd.Flags().Bool("s3", false, "upload to $DASHBOARD_EXPORT_S3_BUCKET instead of a local file")
	cmd.Flags().Bool("page-only", false, "export only the current page")
	return cmd
}

func exportDestination(ctx context.Context, dir string, toS3 bool) (export.Destination, error) {
	if !toS3 {
		return &export.FileDestination{Dir: dir}, nil
	}
	if cfg.ExportS3Bucket == "" {
		return nil, fmt.Errorf("--s3 requires DASHBOARD_EXPORT_S3_BUCKET")
	}
	return export.NewS3Destination(ctx, cfg.ExportS3Bucket, cfg.ExportS3Prefix, cfg.ExportS3Region, cfg.ExportS3Endpoint)
}
