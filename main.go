package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-autowire/app"
	kernel "github.com/km-arc/go-autowire/framework/app"
	"github.com/km-arc/go-autowire/framework/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "autowire",
	Short: "Auto-wiring service container demo",
	Long:  "Runs the demo application on top of the auto-wiring container, or inspects its bindings.",
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bindingsCmd)
}

// bootstrap builds and boots the application with the demo providers.
func bootstrap() (*kernel.Application, error) {
	application, err := kernel.New(config.Load(envFiles...))
	if err != nil {
		return nil, err
	}
	application.Register(&app.AppServiceProvider{})
	application.Boot()
	return application, nil
}

// autowire serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return application.Run(ctx)
	},
}

// autowire bindings — list every resolvable id.
var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List container bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSHARED\tCACHED")
		fmt.Fprintln(w, "--\t----\t------\t------")
		for _, b := range application.Bindings() {
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", b.ID, b.Kind, b.Shared, b.Cached)
		}
		return w.Flush()
	},
}
