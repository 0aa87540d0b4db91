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

package mongo

import (
	"context"
	"time"

	"nakadigo/pkg/logger"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Session struct {
	client *mongo.Client
	log    *logger.Logger
}

// NewSession connects and pings the server; connectTimeout bounds both.
func NewSession(ctx context.Context, uri string, connectTimeout time.Duration, log *logger.Logger) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	session := &Session{
		client: client,
		log:    log.Named("mongo"),
	}
	if err := session.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	session.log.DebugWithFields("Mongo session established", "connectTimeout", connectTimeout)
	return session, nil
}

func (session *Session) Client() *mongo.Client {
	return session.client
}

func (session *Session) Ping(ctx context.Context) error {
	if err := session.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "mongo ping")
	}
	return nil
}

func (session *Session) Close(ctx context.Context) error {
	return session.client.Disconnect(ctx)
}
