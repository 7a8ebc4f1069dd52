// Package preview implements the preview command.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/cmd"
	"github.com/charmbracelet/soft-pages/pkg/web"
	"github.com/spf13/cobra"
)

var (
	listenAddr string

	// Command is the preview command.
	Command = &cobra.Command{
		Use:                "preview OUTPUT",
		Short:              "Serve a generated site over HTTP",
		Args:               cobra.ExactArgs(1),
		PersistentPreRunE:  cmd.InitContext,
		PersistentPostRunE: cmd.CloseContext,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			cfg, err := cmd.Config(c)
			if err != nil {
				return err
			}
			if c.Flags().Changed("listen") {
				cfg.Preview.ListenAddr = listenAddr
			}

			s, err := web.NewServer(ctx, args[0])
			if err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			lch := make(chan error, 1)
			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				log.FromContext(ctx).Info("serving site", "addr", "http://"+cfg.Preview.ListenAddr, "root", args[0])
				lch <- s.ListenAndServe()
			}()

			select {
			case err := <-lch:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-done:
			}

			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return s.Shutdown(ctx)
		},
	}
)

func init() {
	Command.Flags().StringVarP(&listenAddr, "listen", "l", "", "address to listen on")
}
