// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

const (
	StoreBackendSQLite = "sqlite"
	StoreBackendValKey = "valkey"

	OutputText = "text"
	OutputYAML = "yaml"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	API    API    `yaml:"api"`
	Store  Store  `yaml:"store"`
	SQLite SQLite `yaml:"sqlite"`
	ValKey ValKey `yaml:"valkey"`
	Desk   Desk   `yaml:"desk"`
}

// API configures the consigne backend.
type API struct {
	BaseURL   string        `yaml:"baseURL" default:"http://localhost:8000"`
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
	UserAgent string        `yaml:"userAgent" default:"consigne-desk"`
	// NotFoundStatuses and ConflictStatuses are the envelope statuses the
	// backend uses for unknown ids and for closed deposits. Empty means 404
	// and 409.
	NotFoundStatuses []int `yaml:"notFoundStatuses"`
	ConflictStatuses []int `yaml:"conflictStatuses"`

	Username commoncfg.SourceRef `yaml:"username"`
	Password commoncfg.SourceRef `yaml:"password"`
	MTLS     *commoncfg.MTLS     `yaml:"mtls"`
}

// Store selects where the counter session is kept.
type Store struct {
	Backend string `yaml:"backend" default:"sqlite"`
	Key     string `yaml:"key" default:"consigne-session"`
}

type SQLite struct {
	// Path defaults to $HOME/.consigne-desk/state.db.
	Path string `yaml:"path"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"consigne-desk"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type Desk struct {
	ShiftUsersTTL time.Duration `yaml:"shiftUsersTTL" default:"5m"`
	// Output is either text or yaml.
	Output string `yaml:"output" default:"text"`
}
