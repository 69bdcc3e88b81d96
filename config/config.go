/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package config loads multikv's JSON configuration file the way eliasdb's
own config package does: missing keys are filled from DefaultConfig and
the file is created on first run if absent, via
github.com/krotik/common/fileutil.LoadConfig.
*/
package config

import (
	"fmt"
	"strconv"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/fileutil"
)

/*
DefaultConfigFile is the config file LoadConfigFile defaults to when a
caller does not name one explicitly.
*/
var DefaultConfigFile = "multikv.config.json"

/*
Known configuration keys.
*/
const (
	LocationSubstrate   = "LocationSubstrate"
	MemoryOnlySubstrate = "MemoryOnlySubstrate"
	PebbleCacheSizeMB   = "PebbleCacheSizeMB"
	PebbleMemTableMB    = "PebbleMemTableMB"
	DefaultDocFormat    = "DefaultDocFormat"
	LogLevel            = "LogLevel"
)

/*
DefaultConfig is the default configuration, used both to seed a freshly
created config file and to backfill any keys missing from an existing
one.
*/
var DefaultConfig = map[string]interface{}{
	LocationSubstrate:   "db",
	MemoryOnlySubstrate: false,
	PebbleCacheSizeMB:   64,
	PebbleMemTableMB:    32,
	DefaultDocFormat:    "binaryA",
	LogLevel:            "info",
}

/*
Config is the actual configuration in use, populated by LoadConfigFile or
LoadDefaultConfig.
*/
var Config map[string]interface{}

/*
LoadConfigFile loads configfile, creating it with DefaultConfig if it
does not exist yet.
*/
func LoadConfigFile(configfile string) error {
	var err error
	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)
	return err
}

/*
LoadDefaultConfig loads the default configuration without touching disk,
used by tests and by callers that want an ephemeral in-memory substrate
with no config file at all.
*/
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}
	Config = data
}

/*
Str reads a config value as a string.
*/
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

/*
Int reads a config value as an int64.
*/
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)
	errorutil.AssertTrue(err == nil, fmt.Sprintf("could not parse config key %v: %v", key, err))
	return ret
}

/*
Bool reads a config value as a bool.
*/
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))
	errorutil.AssertTrue(err == nil, fmt.Sprintf("could not parse config key %v: %v", key, err))
	return ret
}
