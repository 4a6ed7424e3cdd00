// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package config loads the httpreqd server's YAML configuration via
// github.com/elastic/go-ucfg, the same wrapper-over-ucfg.Config shape
// packetd's confengine package uses: a thin Config type plus
// LoadConfigPath/LoadContent constructors and an Unpack/UnpackChild
// pair for typed access.
package config

import (
	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"

	"github.com/coreproto/httpreq/internal/logging"
)

// Config wraps a ucfg.Config with the accessors this repository needs.
type Config struct {
	conf *ucfg.Config
}

// New wraps an already-parsed ucfg.Config.
func New(conf *ucfg.Config) *Config {
	return &Config{conf: conf}
}

// Has reports whether the dotted path s is present.
func (c *Config) Has(s string) bool {
	ok, err := c.conf.Has(s, -1)
	return err == nil && ok
}

// Unpack decodes the whole document into to.
func (c *Config) Unpack(to any) error {
	return c.conf.Unpack(to)
}

// UnpackChild decodes the sub-tree at the dotted path s into to.
func (c *Config) UnpackChild(s string, to any) error {
	content, err := c.conf.Child(s, -1)
	if err != nil {
		return err
	}
	return content.Unpack(to)
}

// LoadConfigPath reads and parses a YAML file at path.
func LoadConfigPath(path string) (*Config, error) {
	conf, err := yaml.NewConfigWithFile(path, ucfg.PathSep("."))
	if err != nil {
		return nil, err
	}
	return New(conf), nil
}

// LoadContent parses an in-memory YAML document.
func LoadContent(b []byte) (*Config, error) {
	conf, err := yaml.NewConfig(b)
	if err != nil {
		return nil, err
	}
	return New(conf), nil
}

// Server holds the httpreqd binary's top-level settings, unpacked from
// the "server" and "logger" keys of the loaded document.
type Server struct {
	Listen        string          `config:"listen"`
	FrameSize     int             `config:"frameSize"`
	MaxHeaderSize int             `config:"maxHeaderSize"`
	MaxConns      int             `config:"maxConns"`
	Logger        logging.Options `config:"logger"`
}

// DefaultServer returns the settings httpreqd uses when no config file
// overrides them, matching original_source's reference bind address
// and FRAME_SIZE constant.
func DefaultServer() Server {
	return Server{
		Listen:        "127.0.0.1:8080",
		FrameSize:     1024,
		MaxHeaderSize: 8192,
		MaxConns:      256,
		Logger:        logging.Options{Stdout: true, Level: string(logging.LevelInfo)},
	}
}

// LoadServer loads a Server from the "server" and "logger" sub-trees
// of cfg, falling back to DefaultServer's values for anything absent.
func LoadServer(cfg *Config) (Server, error) {
	s := DefaultServer()
	if cfg == nil {
		return s, nil
	}
	if cfg.Has("server") {
		if err := cfg.UnpackChild("server", &s); err != nil {
			return s, err
		}
	}
	if cfg.Has("logger") {
		if err := cfg.UnpackChild("logger", &s.Logger); err != nil {
			return s, err
		}
	}
	return s, nil
}
