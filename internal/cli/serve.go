package cli

import (
	"github.com/spf13/cobra"

	"github.com/gravitymirage/gravitymirage/internal/server"
	"github.com/gravitymirage/gravitymirage/pkg/buildinfo"
	"github.com/gravitymirage/gravitymirage/pkg/config"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server for uploads, previews and exports",
		Long: `Run the Gravity Mirage HTTP server.

The server exposes image uploads, lensed PNG previews and asynchronous
animated GIF exports under /api. Settings come from an optional TOML
config file with PORT and REDIS_ADDR environment overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			artifacts, backend := c.newArtifactCache(ctx, cfg)
			srv, err := server.New(ctx, cfg, c.Logger, c.newRenderer(cfg), artifacts, backend)
			if err != nil {
				return err
			}
			defer srv.Close()

			printInfo("%s %s", StyleTitle.Render("gravitymirage"), buildinfo.Version)
			printDetail("cache backend: %s", backend)
			printDetail("uploads: %s", cfg.Storage.UploadsDir)
			printDetail("exports: %s", cfg.Storage.ExportsDir)

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	return cmd
}
