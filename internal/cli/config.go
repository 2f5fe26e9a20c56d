// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// DefaultConfigPath is the config file used when
// neither a flag nor EnvConfig specifies one.
const DefaultConfigPath = "~/.keychain/config.yml"

// ConfigPath returns the config file path. The path is
// the first non-empty value of filename, EnvConfig and
// DefaultConfigPath. A leading '~' is expanded to the
// user's home directory.
func ConfigPath(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		filename = Env(EnvConfig)
	}
	if strings.TrimSpace(filename) == "" {
		filename = DefaultConfigPath
	}

	path, err := homedir.Expand(strings.TrimSpace(filename))
	if err != nil {
		return "", errors.New("cli: invalid config path '" + filename + "': " + err.Error())
	}
	return filepath.Clean(path), nil
}
