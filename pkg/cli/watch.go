/*
Copyright 2021 Arun Muralidharan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nakadigo/pkg/mirror"
	"nakadigo/pkg/mongo"

	"github.com/spf13/cobra"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror the event type catalogue into MongoDB until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.String("mongo-uri", "", "MongoDB connection string")
	flags.Duration("poll-interval", 0, "How often the event type listing is polled")
	for key, flag := range map[string]string{
		"mongo.uri":           "mongo-uri",
		"watch.poll_interval": "poll-interval",
	} {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func runWatch(ctx context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := opts.newClient()
	if err != nil {
		return err
	}

	settings := opts.settings.Mongo
	sess, err := mongo.NewSession(ctx, settings.URI, settings.ConnectTimeout, opts.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			opts.log.WarnWithFields("Failed to close mongo session", "error", err.Error())
		}
	}()

	store, err := mongo.NewSnapshotStore(ctx, sess, settings.Database, settings.Collection)
	if err != nil {
		return err
	}
	last, err := store.LastCheckpoint(ctx)
	if err != nil {
		return err
	}
	last.IfSome(func(at time.Time) {
		opts.log.InfoWithFields("Resuming mirror", "lastObservedAt", at)
	})

	return mirror.NewDriver(client, store, opts.settings.StreamOptions(), opts.log).Run(ctx)
}
