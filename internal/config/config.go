// Package config loads layered process configuration: CLI flags take
// priority over environment variables, which take priority over the
// handful of keys the core reads out of .vtgo/config.toml. Parsing the
// rest of that file (custom commands, MCP transport) is out of scope.
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration for one invocation.
type Config struct {
	Model                 string
	Agent                 string
	ApprovalMode          string
	WorkspaceRoot         string
	AutoCompressThreshold int
	CompressKeepTurns     int
	LogLevel              string
	FilterHistoryTools    bool

	// StoreBackend selects the session/plan persistence backend: "file"
	// (default, JSON files under workspace/) or "sqlite" (modernc.org/sqlite,
	// single-file DB under workspace/sessions.db).
	StoreBackend string
}

// Load builds the layered view: flags (already parsed onto cmd) override
// VTGO_*-prefixed env vars, which override .vtgo/config.toml, which
// overrides the built-in defaults below.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VTGO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".vtgo")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	v.SetDefault("model", "")
	v.SetDefault("agent", "default")
	v.SetDefault("approval_mode", "auto")
	v.SetDefault("auto_compress_threshold", 50)
	v.SetDefault("compress_keep_turns", 3)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("filter_history_tools", true)
	v.SetDefault("store_backend", "file")

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, err
		}
	}

	return &Config{
		Model:                 v.GetString("model"),
		Agent:                 v.GetString("agent"),
		ApprovalMode:          v.GetString("approval_mode"),
		WorkspaceRoot:         v.GetString("workspace_root"),
		AutoCompressThreshold: v.GetInt("auto_compress_threshold"),
		CompressKeepTurns:     v.GetInt("compress_keep_turns"),
		LogLevel:              v.GetString("log_level"),
		FilterHistoryTools:    v.GetBool("filter_history_tools"),
		StoreBackend:          v.GetString("store_backend"),
	}, nil
}
