package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"
)

const (
	dirName        = ".consigne-desk"
	sqliteFileName = "state.db"
)

var ErrUnknownStoreBackend = errors.New("unknown store backend")

// Credentials loads the operator credentials. Both are empty when no
// username is configured.
func (a API) Credentials() (username, password string, err error) {
	if a.Username.Source == "" {
		return "", "", nil
	}

	user, err := commoncfg.LoadValueFromSourceRef(a.Username)
	if err != nil {
		return "", "", fmt.Errorf("loading api username: %w", err)
	}

	pass, err := commoncfg.LoadValueFromSourceRef(a.Password)
	if err != nil {
		return "", "", fmt.Errorf("loading api password: %w", err)
	}

	return string(user), string(pass), nil
}

// Validate checks the store section.
func (s Store) Validate() error {
	switch s.Backend {
	case StoreBackendSQLite, StoreBackendValKey:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreBackend, s.Backend)
	}
}

// DatabasePath returns the configured path or the default one in the home
// directory.
func (s SQLite) DatabasePath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, dirName, sqliteFileName), nil
}

// MakeClientOption builds the valkey client options, loading the referenced
// secrets.
func MakeClientOption(conf ValKey) (valkey.ClientOption, error) {
	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("loading valkey host: %w", err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("loading valkey username: %w", err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Password)
	if err != nil {
		return valkey.ClientOption{}, fmt.Errorf("loading valkey password: %w", err)
	}

	opts := valkey.ClientOption{
		InitAddress: []string{string(host)},
		Username:    string(user),
		Password:    string(password),
	}

	if conf.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&conf.SecretRef.MTLS)
		if err != nil {
			return valkey.ClientOption{}, fmt.Errorf("loading valkey mTLS config from secret ref: %w", err)
		}

		opts.TLSConfig = tlsConfig
	}

	return opts, nil
}
