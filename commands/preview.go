package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"estimatedoc/services"
)

const (
	sectionDetail    = "detail"
	sectionSummary   = "summary"
	sectionBreakdown = "breakdown"
)

type previewOpts struct {
	commonOpts
	items   string
	section string
}

func newPreviewCmd() *cobra.Command {
	opts := previewOpts{section: sectionDetail}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the paginated layout of an estimate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.items, "items", "", "line items sheet (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.section, "section", opts.section, "table to preview: detail, summary, breakdown")
	cmd.MarkFlagRequired("items")

	return cmd
}

func pickSection(est *services.Estimate, c services.Captions, name string) (services.Section, error) {
	switch name {
	case sectionDetail:
		return est.DetailSection(c), nil
	case sectionSummary:
		return est.GrandSummarySection(c), nil
	case sectionBreakdown:
		return est.BreakdownSection(c), nil
	}
	return services.Section{}, fmt.Errorf("invalid section: %s (must be 'detail', 'summary' or 'breakdown')", name)
}

func runPreview(ctx context.Context, w io.Writer, opts *previewOpts) error {
	logger := loggerFromContext(ctx)

	o, err := opts.options(ctx)
	if err != nil {
		return err
	}
	items, err := loadItems(ctx, opts.items)
	if err != nil {
		return err
	}

	est := o.Estimate(services.DocumentInfo{Company: o.Company}, items)
	sec, err := pickSection(est, o.Captions, opts.section)
	if err != nil {
		return err
	}

	eng, err := o.Engine()
	if err != nil {
		return err
	}
	l, err := eng.Paginate(sec, 1)
	if err != nil {
		return err
	}
	logger.Infof("%s: %d blocks on %d pages", sec.Title, len(sec.Blocks), l.Pages())

	_, err = io.WriteString(w, services.RenderPreview(l, o.Geometry, o.Captions, o.Style))
	return err
}
