package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"estimatedoc/services"
)

type renderOpts struct {
	commonOpts
	items  string
	info   string
	output string
	format string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an estimate sheet to PDF or Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), &opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.items, "items", "", "line items sheet (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.info, "info", "", "site information sheet (.csv or .xlsx)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf, summary, excel (default from --out extension)")
	cmd.MarkFlagRequired("items")
	cmd.MarkFlagRequired("out")

	return cmd
}

// outputFormat picks the export format from the flag or the output extension.
func outputFormat(format, output string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".xlsx":
			return services.FormatExcel, nil
		case ".pdf", "":
			return services.FormatPDF, nil
		default:
			return "", fmt.Errorf("cannot infer format from %q (use --format)", output)
		}
	}
	switch format {
	case services.FormatPDF, services.FormatSummary, services.FormatExcel:
		return format, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'pdf', 'summary' or 'excel')", format)
}

func runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	o, err := opts.options(ctx)
	if err != nil {
		return err
	}

	items, err := loadItems(ctx, opts.items)
	if err != nil {
		return err
	}
	info, err := loadInfo(opts.info, o.Company)
	if err != nil {
		return err
	}

	est := o.Estimate(info, items)
	logger.Debug("estimate totals", "subtotal", est.Totals.Subtotal, "tax", est.Totals.Tax, "total", est.Totals.GrandTotal)

	data, err := o.Render(format, est)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	p.done(fmt.Sprintf("Wrote %s (%s)", opts.output, humanize.Bytes(uint64(len(data)))))
	return nil
}
