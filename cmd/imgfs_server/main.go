// Command imgfs_server opens an ImgFS store and serves it over HTTP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/config"
	"github.com/prasoul/imgfs/internal/dispatch"
	"github.com/prasoul/imgfs/internal/ioserver"
	"github.com/prasoul/imgfs/internal/store"
)

var verboseFlag bool

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imgfs_server <imgfs_file> [port]",
		Short:         "Serve an ImgFS store over HTTP",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verboseFlag {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		RunE: runServer,
	}
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	port := cfg.Port
	if len(args) == 2 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p <= 0 {
			return fmt.Errorf("invalid port %q", args[1])
		}
		port = p
	}

	s, err := store.Open(path, store.ReadWrite)
	if err != nil {
		return err
	}
	defer s.Close()

	d := dispatch.New(s)
	logrus.Info(dispatch.BannerLine(s))

	srv, err := ioserver.Listen(fmt.Sprintf(":%d", port), d)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("imgfs_server: shutting down")
		srv.Close()
	}()

	logrus.WithField("addr", srv.Addr().String()).Info("imgfs_server: listening")
	return srv.Serve()
}
