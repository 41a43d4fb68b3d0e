package noflood

import (
	"context"
	"log/slog"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
)

// BackupJob returns a job that publishes the whole config table to receiver.
func BackupJob(store Snapshotter, pub exchange.Publisher, sender, receiver string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		snap := store.Snapshot()
		env, err := exchange.NewEnvelope(sender, []string{receiver}, exchange.ActionBackup, exchange.TypeConfigs, snap)
		if err != nil {
			return err
		}
		if err := pub.Publish(ctx, env); err != nil {
			return err
		}
		slog.Info("backup: config table shared", "groups", len(snap), "to", receiver)
		return nil
	}
}
