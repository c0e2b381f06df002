package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"estimatedoc/config"
	"estimatedoc/services"
)

var (
	version = "dev" // semantic version, set via ldflags
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the build information printed by the version command.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Register adds the estimate commands to root.
func Register(root *cobra.Command) {
	root.AddCommand(newRenderCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newVersionCmd())
}

// commonOpts are the flags shared by the document commands.
type commonOpts struct {
	configPath string
	verbose    bool
}

func (o *commonOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if o.verbose {
			level = log.DebugLevel
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
	}
}

func (o *commonOpts) options(ctx context.Context) (services.Options, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return services.Options{}, err
	}
	if o.configPath != "" {
		loggerFromContext(ctx).Debug("loaded config", "path", o.configPath)
	}
	return cfg.Options(), nil
}

// loadItems reads the line items sheet and logs rows that were skipped.
func loadItems(ctx context.Context, path string) ([]services.LineItem, error) {
	logger := loggerFromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items: %w", err)
	}
	defer f.Close()

	res, err := services.ImportLineItems(f, path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	for _, e := range res.Errors {
		logger.Warn("skipped row", "row", e.Row, "field", e.Field, "msg", e.Message)
	}
	logger.Infof("Loaded %d items (%d rows skipped)", res.ValidRows, res.ErrorRows)
	return res.Items, nil
}

func loadInfo(path string, company services.CompanyProfile) (services.DocumentInfo, error) {
	if path == "" {
		return services.DocumentInfo{Company: company}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return services.DocumentInfo{}, fmt.Errorf("open info: %w", err)
	}
	defer f.Close()
	return services.ParseDocumentInfo(f, path, company)
}
