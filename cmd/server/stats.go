package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	grpcAdapter "github.com/quentinrf/darkwatt/internal/adapters/grpc"
	"github.com/quentinrf/darkwatt/internal/adapters/discovery"
)

func newStatsCmd(configFile *string) *cobra.Command {
	var (
		addr     string
		discover time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the current luminance and savings of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newConfigManager(*configFile)
			if err != nil {
				return err
			}
			if err := manager.Load(); err != nil {
				return err
			}
			config := manager.Current()

			ctx, cancel := context.WithTimeout(cmd.Context(), discover+timeout)
			defer cancel()

			if addr == "" && discover > 0 {
				found, err := discoverServer(ctx, discover)
				if err != nil {
					return err
				}
				addr = found.Addr()
			}
			if addr == "" {
				addr = net.JoinHostPort("localhost", config.GRPC.Port)
			}

			creds := insecure.NewCredentials()
			if files := config.TLS.Files(); files.Enabled() {
				tlsCfg, err := files.Client("")
				if err != nil {
					return fmt.Errorf("failed to load TLS config: %w", err)
				}
				creds = credentials.NewTLS(tlsCfg)
			}

			client, err := grpcAdapter.Dial(addr, creds)
			if err != nil {
				return err
			}
			defer client.Close()

			data, err := client.GetData(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch data from %s: %w", addr, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(addr, data))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server address (default localhost:<grpc.port>)")
	cmd.Flags().DurationVar(&discover, "discover", 0, "browse mDNS for a server for this long when --addr is unset")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

func discoverServer(ctx context.Context, window time.Duration) (discovery.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	servers, errs := discovery.Browse(ctx)
	for {
		select {
		case s, ok := <-servers:
			if !ok {
				return discovery.Server{}, errors.New("no darkwatt server found on the network")
			}
			return s, nil
		case err, ok := <-errs:
			if ok && err != nil {
				return discovery.Server{}, err
			}
			errs = nil
		}
	}
}
