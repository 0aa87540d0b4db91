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
	"fmt"
	"io"

	"nakadigo/pkg/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDescribeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <eventType>",
		Short: "Show one event type and its partitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}
}

func runDescribe(ctx context.Context, opts *rootOptions, name string, out io.Writer) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.settings.WaitTimeout)
	defer cancel()

	found, err := client.GetEventType(ctx, name)
	if err != nil {
		return err
	}
	et, ok := found.Take()
	if !ok {
		return errors.Errorf("event type %s not found", name)
	}
	if _, err := fmt.Fprintln(out, et); err != nil {
		return err
	}

	partitions, err := client.ListPartitions(ctx, name)
	if err != nil {
		return err
	}
	partitions.IfSome(func(p []model.Partition) {
		renderPartitions(out, p)
	})
	return nil
}

func renderPartitions(out io.Writer, partitions []model.Partition) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Partition", "Oldest Offset", "Newest Offset", "Unconsumed"})
	for _, p := range partitions {
		t.AppendRow(table.Row{p.Partition, p.OldestAvailableOffset, p.NewestAvailableOffset, p.UnconsumedEvents})
	}
	t.Render()
}
