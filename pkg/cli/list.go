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
	"io"
	"strconv"
	"strings"

	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all event types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

// runList issues one asynchronous listing, waits for it at most wait_timeout
// and prints the result when there is one.
func runList(ctx context.Context, opts *rootOptions, out io.Writer) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result, err := client.ListEventTypesAsync(ctx).GetWithTimeout(opts.settings.WaitTimeout)
	if err != nil {
		return err
	}
	result.IfSome(func(eventTypes []model.EventType) {
		renderEventTypes(out, eventTypes)
	})
	result.IfNone(func() {
		opts.log.Info("Nakadi returned no event type listing")
	})
	return nil
}

func renderEventTypes(out io.Writer, eventTypes []model.EventType) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Owning Application", "Category", "Partition Strategy", "Default Statistic"})
	for _, et := range eventTypes {
		t.AppendRow(table.Row{et.Name, et.OwningApplication, et.Category, et.PartitionStrategy,
			statisticSummary(et.DefaultStatistic)})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(eventTypes)})
	t.Render()
}

func statisticSummary(stat optional.Option[model.EventTypeStatistics]) string {
	return optional.MapOr(stat, "-", func(s model.EventTypeStatistics) string {
		parts := make([]string, 0, 4)
		add := func(label string, v optional.Option[int]) {
			v.IfSome(func(n int) {
				parts = append(parts, label+"="+strconv.Itoa(n))
			})
		}
		add("mpm", s.MessagesPerMinute())
		add("size", s.MessageSize())
		add("read", s.ReadParallelism())
		add("write", s.WriteParallelism())
		if len(parts) == 0 {
			return "-"
		}
		return strings.Join(parts, " ")
	})
}
