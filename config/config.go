// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates configuration for the application.
type Config struct {
	Source SourceConfig `mapstructure:"source"`
	SQL    SQLConfig    `mapstructure:"sql"`
	XML    XMLConfig    `mapstructure:"xml"`
	Export ExportConfig `mapstructure:"export"`
}

type SourceConfig struct {
	// BufferSize sizes buffered reads over decoded dump streams.
	BufferSize int `mapstructure:"buffersize"`
}

type SQLConfig struct {
	// Token is the text after which INSERT tuples start.
	Token string `mapstructure:"token"`
}

type XMLConfig struct {
	// ChunkSize is the read buffer in front of the XML tokenizer.
	ChunkSize int `mapstructure:"chunksize"`
}

type ExportConfig struct {
	MaxRowsPerGroup int64 `mapstructure:"maxrowspergroup"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{BufferSize: 64 * 1024},
		SQL:    SQLConfig{Token: "VALUES "},
		XML:    XMLConfig{ChunkSize: 4 * 1024 * 1024},
		Export: ExportConfig{MaxRowsPerGroup: 10_000},
	}
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "MWDUMPS" and the dot character
// in keys is replaced by an underscore. For example, "xml.chunksize" becomes
// "MWDUMPS_XML_CHUNKSIZE".
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	// An empty token would match nothing useful.
	if cfg.SQL.Token == "" {
		cfg.SQL.Token = DefaultConfig().SQL.Token
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
