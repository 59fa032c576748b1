package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/internal/config"
	"github.com/vango-dev/domkit/internal/demo"
	"github.com/vango-dev/domkit/pkg/toast"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port     int
		host     string
		pagePath string
		title    string
		pretty   bool
		head     headFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long: `Serve a page built from an element description, with toasts pushed
to the browser over WebSocket and the request API mounted under /api.

Examples:
  domkit serve
  domkit serve --port=8080 --page=page.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if pagePath != "" {
				cfg.Server.Page = pagePath
			}
			if cfg.Head, err = head.apply(cfg.Head); err != nil {
				return err
			}

			server, err := newDemoServer(cfg, title, pretty)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			fmt.Fprintln(w, "  serve")
			fmt.Fprintln(w)
			success(w, "Listening on %s", cfg.URL())
			info(w, "Toast stream at %s%s", cfg.URL(), toast.DefaultHubPath)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(w, "\n\n  Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			return server.ListenAndServe(ctx, cfg.Address())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from domkit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from domkit.json)")
	cmd.Flags().StringVar(&pagePath, "page", "", "Element description for the page body")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Page title")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the page markup")
	head.register(cmd)

	return cmd
}

// newDemoServer wires the demo server from cfg.
func newDemoServer(cfg *config.Config, title string, pretty bool) (*demo.Server, error) {
	var page *el.Spec
	if path := cfg.PagePath(); path != "" {
		spec, err := readSpec(os.Stdin, path)
		if err != nil {
			return nil, err
		}
		page = spec
	} else {
		warn(os.Stderr, "No page description configured, serving the default page")
	}

	return demo.New(demo.Config{
		Page:   page,
		Title:  title,
		Pretty: pretty,
		Head:   cfg.Head,
		Logger: slog.Default(),
		ToastOptions: []toast.Option{
			toast.WithDurations(cfg.Toast.Short.Std(), cfg.Toast.Long.Std()),
			toast.WithFadeDelays(cfg.Toast.FadeIn.Std(), cfg.Toast.FadeOut.Std()),
			toast.WithContainerID(cfg.Toast.ContainerID),
		},
		FetchOptions: fetchOptions(cfg),
	})
}
