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

// Package cli holds the nakadigo commands.
package cli

import (
	"nakadigo/pkg/config"
	"nakadigo/pkg/logger"
	"nakadigo/pkg/nakadi"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions is shared by all sub commands. settings and log are filled in
// before any sub command runs.
type rootOptions struct {
	configFile string
	v          *viper.Viper
	settings   config.Settings
	log        *logger.Logger
}

// NewRootCommand builds the nakadigo command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:           "nakadigo",
		Short:         "Inspect and mirror the event types of a Nakadi installation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.String("host", "", "Nakadi host name, without scheme")
	flags.Int("port", 0, "Nakadi port (default 443 when secured, 80 otherwise)")
	flags.Bool("secured", true, "Use TLS")
	flags.Bool("verify-ssl", true, "Verify the server certificate")
	flags.String("token", "", "Bearer token sent with every request")
	flags.Duration("wait-timeout", 0, "How long to wait for a result")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"host":         "host",
		"port":         "port",
		"secured":      "secured",
		"verify_ssl":   "verify-ssl",
		"token":        "token",
		"wait_timeout": "wait-timeout",
		"log_level":    "log-level",
	} {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newDescribeCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	return cmd
}

func (opts *rootOptions) load() error {
	settings, err := config.Load(opts.v, opts.configFile)
	if err != nil {
		return err
	}
	opts.settings = settings
	opts.log = logger.NewConsoleLogger(map[string]interface{}{"worker": "nakadigo"}, settings.LogLevel)
	return nil
}

func (opts *rootOptions) newClient() (*nakadi.Client, error) {
	return nakadi.NewClient(opts.settings.ClientConfig(), opts.log)
}
