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

// Logging wrapper

package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger A generic wrapper over any logging implementation.
type Logger struct {
	log *zap.SugaredLogger // zap logger instance
}

// ParseLevel maps a configured level name onto a zap level.
// Unknown names fall back to info.
func ParseLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewConsoleLogger Creates a new logging instance with the provided
// constant fields. Records below level are dropped.
func NewConsoleLogger(fields map[string]interface{}, level string) *Logger {

	cfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},

		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			TimeKey:     "time",
			NameKey:     "logger",
			EncodeLevel: zapcore.CapitalLevelEncoder,
			EncodeTime:  zapcore.ISO8601TimeEncoder,
			EncodeName:  zapcore.FullNameEncoder,
		},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Error creation logger: %s", err.Error()))
	}

	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}

	return &Logger{
		log: logger.With(zfields...).Sugar(),
	}
}

// NewNopLogger returns a logger that discards everything. Used by tests
// and by library callers that do not care about client logs.
func NewNopLogger() *Logger {
	return &Logger{
		log: zap.NewNop().Sugar(),
	}
}

// Sync Flushes any buffered log records.
func (elog *Logger) Sync() {
	_ = elog.log.Sync()
}

// Named returns a child logger with name appended to the logger name.
func (elog *Logger) Named(name string) *Logger {
	return &Logger{
		log: elog.log.Named(name),
	}
}

// WithFields Creates a new logging instance with additional constant
// fields. The new fields are not added to the parent logging instance.
func (elog *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		log: elog.log.With(fields...),
	}
}

// Debug uses fmt.Sprintf to log a templated message.
func (elog *Logger) Debug(msg string, args ...interface{}) {
	elog.log.Debugf(msg, args...)
}

// DebugWithFields logs a message with some additional context. The variadic key-value pairs are treated
// as the context key values.
func (elog *Logger) DebugWithFields(msg string, keysAndValues ...interface{}) {
	elog.log.Debugw(msg, keysAndValues...)
}

// Error uses fmt.Sprintf to log a templated message.
func (elog *Logger) Error(msg string, args ...interface{}) {
	elog.log.Errorf(msg, args...)
}

// ErrorWithFields logs a message with some additional context. The variadic key-value pairs are treated
// as the context key values.
func (elog *Logger) ErrorWithFields(msg string, keysAndValues ...interface{}) {
	elog.log.Errorw(msg, keysAndValues...)
}

// Fatal uses fmt.Sprintf to construct and log a message, then calls os.Exit.
func (elog *Logger) Fatal(msg string, args ...interface{}) {
	elog.log.Fatalf(msg, args...)
}

// FatalWithFields logs a message with some additional context and then calls os.Exit.
func (elog *Logger) FatalWithFields(msg string, keysAndValues ...interface{}) {
	elog.log.Fatalw(msg, keysAndValues...)
}

// Info uses fmt.Sprintf to log a templated message.
func (elog *Logger) Info(msg string, args ...interface{}) {
	elog.log.Infof(msg, args...)
}

// InfoWithFields logs a message with some additional context. The variadic key-value pairs are treated
// as the context key values.
func (elog *Logger) InfoWithFields(msg string, keysAndValues ...interface{}) {
	elog.log.Infow(msg, keysAndValues...)
}

// Warn uses fmt.Sprintf to log a templated message.
func (elog *Logger) Warn(msg string, args ...interface{}) {
	elog.log.Warnf(msg, args...)
}

// WarnWithFields logs a message with some additional context. The variadic key-value pairs are treated
// as the context key values.
func (elog *Logger) WarnWithFields(msg string, keysAndValues ...interface{}) {
	elog.log.Warnw(msg, keysAndValues...)
}
