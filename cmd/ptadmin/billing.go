package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/events"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/export"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/model"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/query"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/screen"
	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/ui"
)

var invoicesLister = lister[*model.Invoice]{
	desc: screen.Invoices,
	load: func(ctx context.Context, _ query.Params) ([]*model.Invoice, int, error) {
		invoices, err := apiClient.ListInvoices(ctx)
		return invoices, len(invoices), err
	},
	render: printInvoicesTable,
	table:  export.Invoices,
}

var paymentMethodsLister = lister[*model.PaymentMethod]{
	desc: screen.PaymentMethods,
	load: func(ctx context.Context, _ query.Params) ([]*model.PaymentMethod, int, error) {
		methods, err := apiClient.ListPaymentMethods(ctx)
		return methods, len(methods), err
	},
	render: printPaymentMethodsTable,
	table:  export.PaymentMethods,
}

var billingCmd = &cobra.Command{
	Use:     "billing",
	Short:   "Invoices, payment methods and revenue",
	GroupID: "screens",
}

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List and download invoices",
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "Manage payment methods",
}

var billingStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show revenue statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := apiClient.BillingStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting billing stats: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), s, printBillingStats)
	},
}

// billingSummary is everything the billing overview shows.
type billingSummary struct {
	Stats    *model.BillingStats    `json:"stats"`
	Invoices []*model.Invoice       `json:"recentInvoices"`
	Methods  []*model.PaymentMethod `json:"paymentMethods"`
}

// recentInvoices is how many invoices the overview lists.
const recentInvoices = 5

func loadBillingSummary(ctx context.Context) (*billingSummary, error) {
	var sum billingSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Stats, err = apiClient.BillingStats(gctx)
		return err
	})
	g.Go(func() error {
		invoices, err := apiClient.ListInvoices(gctx)
		if err != nil {
			return err
		}
		st := screen.Invoices.Schema.Default()
		st.PageSize = recentInvoices
		sum.Invoices, _ = screen.Invoices.View(invoices, st)
		return nil
	})
	g.Go(func() (err error) {
		sum.Methods, err = apiClient.ListPaymentMethods(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}

func printBillingSummary(w io.Writer, s *billingSummary) {
	printBillingStats(w, s.Stats)
	fmt.Fprintln(w, ui.RenderAccent("\nRecent invoices:"))
	printInvoicesTable(w, s.Invoices)
	fmt.Fprintln(w, ui.RenderAccent("\nPayment methods:"))
	printPaymentMethodsTable(w, s.Methods)
}

var billingSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show revenue, recent invoices and payment methods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := loadBillingSummary(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading billing: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), sum, printBillingSummary)
	},
}

var invoiceDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download an invoice document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := apiClient.DownloadInvoice(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("downloading invoice: %w", err)
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = "invoice-" + args[0] + ".pdf"
		}
		if out == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing invoice: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", out, len(data))
		return nil
	},
}

// paymentFormFromFlags reads the card flags and validates them.
func paymentFormFromFlags(cmd *cobra.Command) (*model.PaymentForm, error) {
	f := &model.PaymentForm{}
	f.CardNumber, _ = cmd.Flags().GetString("number")
	f.ExpiryMonth, _ = cmd.Flags().GetString("exp-month")
	f.ExpiryYear, _ = cmd.Flags().GetString("exp-year")
	f.CVV, _ = cmd.Flags().GetString("cvv")
	f.CardholderName, _ = cmd.Flags().GetString("name")
	if err := model.ValidatePaymentForm(f, time.Now()); err != nil {
		return nil, err
	}
	return f, nil
}

var methodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := paymentFormFromFlags(cmd)
		if err != nil {
			return err
		}
		m, err := apiClient.CreatePaymentMethod(cmd.Context(), form)
		if err != nil {
			return fmt.Errorf("adding payment method: %w", err)
		}
		announce(cmd.Context(), screen.NamePaymentMethods, events.ActionCreated, m.ID)
		return printRecord(cmd.OutOrStdout(), []*model.PaymentMethod{m}, printPaymentMethodsTable)
	},
}

var methodUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a card's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := paymentFormFromFlags(cmd)
		if err != nil {
			return err
		}
		m, err := apiClient.UpdatePaymentMethod(cmd.Context(), args[0], form)
		if err != nil {
			return fmt.Errorf("updating payment method: %w", err)
		}
		announce(cmd.Context(), screen.NamePaymentMethods, events.ActionUpdated, args[0])
		return printRecord(cmd.OutOrStdout(), []*model.PaymentMethod{m}, printPaymentMethodsTable)
	},
}

var methodDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeletePaymentMethod(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting payment method: %w", err)
		}
		announce(cmd.Context(), screen.NamePaymentMethods, events.ActionDeleted, args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "payment method %s deleted\n", args[0])
		return nil
	},
}

func init() {
	invoiceDownloadCmd.Flags().StringP("out", "o", "", "file to write (default invoice-<id>.pdf, - for stdout)")

	for _, c := range []*cobra.Command{methodAddCmd, methodUpdateCmd} {
		c.Flags().String("number", "", "card number")
		c.Flags().String("exp-month", "", "expiry month (1-12)")
		c.Flags().String("exp-year", "", "expiry year (YYYY)")
		c.Flags().String("cvv", "", "security code")
		c.Flags().String("name", "", "cardholder name")
	}

	invoicesCmd.AddCommand(invoicesLister.listCmd())
	invoicesCmd.AddCommand(invoiceDownloadCmd)
	invoicesCmd.AddCommand(invoicesLister.exportCmd())
	invoicesCmd.AddCommand(invoicesLister.watchCmd())

	methodsCmd.AddCommand(paymentMethodsLister.listCmd())
	methodsCmd.AddCommand(methodAddCmd)
	methodsCmd.AddCommand(methodUpdateCmd)
	methodsCmd.AddCommand(methodDeleteCmd)
	methodsCmd.AddCommand(paymentMethodsLister.exportCmd())
	methodsCmd.AddCommand(paymentMethodsLister.watchCmd())

	billingCmd.AddCommand(billingSummaryCmd)
	billingCmd.AddCommand(billingStatsCmd)
	billingCmd.AddCommand(invoicesCmd)
	billingCmd.AddCommand(methodsCmd)
}
