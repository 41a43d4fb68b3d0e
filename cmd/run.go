package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/dependency"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/heartbeat"
)

var runVerbose bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the noflood gateway",
	RunE:  runGateway,
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Verbose logging")
}

func runGateway(_ *cobra.Command, _ []string) error {
	setupLogging(runVerbose)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer container.Close()

	fmt.Printf("%s Starting %s %s...\n", logo, cfg.Project.Name, cfg.Project.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	channelMgr := container.ChannelManager()
	if enabled := channelMgr.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled")
	}
	if !cfg.Exchange.Enabled {
		fmt.Println("Warning: exchange disabled, assisted sessions will not reach " + cfg.Noflood.Authority)
	}

	hb := heartbeat.NewService(heartbeat.Probe{
		Bus:   container.MessageBus(),
		Store: container.Store(),
	}, 0)

	g.Go(func() error { return container.Router().Run(gctx) })
	g.Go(func() error { return container.Receiver().Run(gctx, container.Consumer()) })
	g.Go(func() error { return container.CronService().Start(gctx) })
	g.Go(func() error { return hb.Start(gctx) })
	g.Go(func() error { return channelMgr.StartAll(gctx) })

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
