package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "discord.token", typ: kString, env: "DISCORD_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Discord.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Discord.Token },
	},
	{
		key: "bot.prefix", typ: kString, env: "COMMAND_PREFIX",
		apply:   func(cfg *Config, v any) { cfg.Bot.Prefix = v.(string) },
		extract: func(cfg Config) any { return cfg.Bot.Prefix },
	},
	{
		key: "affirmation.channel_id", typ: kString, env: "AFFIRMATION_CHANNEL_ID",
		apply:   func(cfg *Config, v any) { cfg.Affirmation.ChannelID = v.(string) },
		extract: func(cfg Config) any { return cfg.Affirmation.ChannelID },
	},
	{
		key: "affirmation.time", typ: kString, env: "SLAYMOM_AFFIRMATION_TIME",
		apply:   func(cfg *Config, v any) { cfg.Affirmation.Time = v.(string) },
		extract: func(cfg Config) any { return cfg.Affirmation.Time },
	},
	{
		key: "storage.data_dir", typ: kString, env: "SLAYMOM_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "server.port", typ: kInt, env: "SLAYMOM_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "SLAYMOM_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "mcp.stdio", typ: kBool, env: "SLAYMOM_MCP_STDIO",
		apply:   func(cfg *Config, v any) { cfg.MCP.Stdio = v.(bool) },
		extract: func(cfg Config) any { return cfg.MCP.Stdio },
	},
	{
		key: "flow.confirm_timeout", typ: kDuration, env: "SLAYMOM_FLOW_CONFIRM_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Flow.ConfirmTimeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Flow.ConfirmTimeout },
	},
	{
		key: "flow.vent_timeout", typ: kDuration, env: "SLAYMOM_FLOW_VENT_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Flow.VentTimeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Flow.VentTimeout },
	},
	{
		key: "flow.vent_reply_delay", typ: kDuration, env: "SLAYMOM_FLOW_VENT_REPLY_DELAY",
		apply:   func(cfg *Config, v any) { cfg.Flow.VentReplyDelay = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Flow.VentReplyDelay },
	},
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// parseValue converts raw text to the Go type a key holds.
func parseValue(typ keyType, raw string) (any, error) {
	switch typ {
	case kInt:
		return strconv.Atoi(raw)
	case kBool:
		return strconv.ParseBool(raw)
	case kDuration:
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

func typeName(typ keyType) string {
	switch typ {
	case kInt:
		return "integer"
	case kBool:
		return "bool"
	case kDuration:
		return "duration"
	default:
		return "string"
	}
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool, kDuration:
			raw, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if !ok || raw == "" {
				continue
			}
			v, err := parseValue(s.typ, raw)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from config key %s=%q: %v. Using default value.\n", typeName(s.typ), s.key, raw, err)
				continue
			}
			s.apply(cfg, v)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := parseValue(s.typ, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from env var %s=%q: %v. Using default value.\n", typeName(s.typ), s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
