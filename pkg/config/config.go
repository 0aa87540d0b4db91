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

// Package config loads nakadigo settings from a YAML file and NAKADI_ environment variables.
package config

import (
	"strings"
	"time"

	"nakadigo/pkg/nakadi"
	"nakadigo/pkg/stream"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "NAKADI"

type MongoSettings struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type WatchSettings struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	MaxRetries    uint64        `mapstructure:"max_retries"`
}

// Settings
// Everything the CLI reads from file, environment or flags.
type Settings struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Secured        bool          `mapstructure:"secured"`
	VerifySSL      bool          `mapstructure:"verify_ssl"`
	Token          string        `mapstructure:"token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	WaitTimeout    time.Duration `mapstructure:"wait_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	Mongo          MongoSettings `mapstructure:"mongo"`
	Watch          WatchSettings `mapstructure:"watch"`
}

// New returns a viper instance with defaults and environment binding in place.
// NAKADI_MONGO_URI maps to mongo.uri and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", 0)
	v.SetDefault("secured", nakadi.DefaultConfig.SecuredConnection)
	v.SetDefault("verify_ssl", nakadi.DefaultConfig.VerifySSLCertificate)
	v.SetDefault("token", "")
	v.SetDefault("request_timeout", nakadi.DefaultConfig.RequestTimeout)
	v.SetDefault("wait_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017/")
	v.SetDefault("mongo.database", "nakadi")
	v.SetDefault("mongo.collection", "event_types")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("watch.poll_interval", stream.DefaultStreamOptions.PollInterval)
	v.SetDefault("watch.flush_interval", stream.DefaultStreamOptions.FlushInterval)
	v.SetDefault("watch.batch_size", stream.DefaultStreamOptions.BatchSize)
	v.SetDefault("watch.max_retries", stream.DefaultStreamOptions.MaxWriteRetries)
	return v
}

// Load reads configFile when given and decodes the merged settings.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	var settings Settings
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return settings, errors.Wrapf(err, "read config file %s", configFile)
		}
	}
	if err := v.Unmarshal(&settings); err != nil {
		return settings, errors.Wrap(err, "decode configuration")
	}
	return settings, nil
}

// ClientConfig maps the settings onto a Nakadi client configuration.
func (s Settings) ClientConfig() nakadi.Config {
	cfg := nakadi.DefaultConfig
	cfg.Host = s.Host
	cfg.Port = s.Port
	cfg.SecuredConnection = s.Secured
	cfg.VerifySSLCertificate = s.VerifySSL
	cfg.RequestTimeout = s.RequestTimeout
	if s.Token != "" {
		cfg.TokenProvider = nakadi.StaticToken(s.Token)
	}
	return cfg
}

func (s Settings) StreamOptions() stream.StreamOptions {
	opts := stream.DefaultStreamOptions
	opts.PollInterval = s.Watch.PollInterval
	opts.FlushInterval = s.Watch.FlushInterval
	opts.BatchSize = s.Watch.BatchSize
	opts.MaxWriteRetries = s.Watch.MaxRetries
	return opts
}
