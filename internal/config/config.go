// Package config carries the ambient configuration layer: optional
// HCL-file table presets plus a server block of process-level
// settings. cmd/buraserver uses only the table presets; its listen
// address and log level come from its own kong flags. Grounded on the teacher's ServerConfig
// (internal/server/config.go), repurposed from poker stakes/bot blocks
// to Bura table rules; the bot block has no Bura analogue and is
// dropped (see DESIGN.md).
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/bura/server/internal/room"
)

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TablePreset is a named, file-configurable TableConfig override,
// grounded on the teacher's `table "name" { ... }` HCL block.
type TablePreset struct {
	Name              string `hcl:"name,label"`
	MaxPlayers        int    `hcl:"max_players,optional"`
	DiscardVisibility string `hcl:"discard_visibility,optional"`
	EnableFourEnds    bool   `hcl:"enable_four_ends,optional"`
	TurnTimeoutSec    int    `hcl:"turn_timeout_sec,optional"`
}

// ToTableConfig converts the HCL preset into a room.TableConfig,
// applying defaults for anything left unset.
func (p TablePreset) ToTableConfig() room.TableConfig {
	cfg := room.DefaultTableConfig()
	if p.MaxPlayers != 0 {
		cfg.MaxPlayers = p.MaxPlayers
	}
	if p.DiscardVisibility != "" {
		cfg.DiscardVisibility = room.DiscardVisibility(p.DiscardVisibility)
	}
	cfg.EnableFourEnds = p.EnableFourEnds
	if p.TurnTimeoutSec != 0 {
		cfg.TurnTimeoutSec = p.TurnTimeoutSec
	}
	return cfg
}

// ServerConfig is the full file-loaded configuration: process
// settings plus named table presets selectable at room-create time.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TablePreset  `hcl:"table,block"`
}

// DefaultServerConfig returns the built-in defaults used when no HCL
// file is supplied.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "0.0.0.0",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TablePreset{
			{Name: "default", MaxPlayers: 4, DiscardVisibility: "open", EnableFourEnds: false, TurnTimeoutSec: 40},
		},
	}
}

// Load reads an HCL configuration file, falling back to
// DefaultServerConfig when filename does not exist.
func Load(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL file: %s", diags.Error())
	}

	var cfg ServerConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL: %s", diags.Error())
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if len(cfg.Tables) == 0 {
		cfg.Tables = DefaultServerConfig().Tables
	}
	return &cfg, nil
}

// TableByName returns a named preset's TableConfig, or the library
// default when name is unknown.
func (c *ServerConfig) TableByName(name string) room.TableConfig {
	for _, t := range c.Tables {
		if t.Name == name {
			return t.ToTableConfig()
		}
	}
	return room.DefaultTableConfig()
}
