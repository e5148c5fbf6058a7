// This file maps the config file and CLI context onto the relay config.

package launcher

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v2"

	"github.com/rony4d/go-bridge-relay/integration"
)

// Config aggregates everything the launcher needs: process settings and
// the relay assembly config.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Preset  string        `yaml:"preset"`

	Relay integration.Config `yaml:",inline"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SentryDSN string `yaml:"sentryDSN"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

//	defaultConfig lays the values from defaults.go out in the Config shape.
//	Both chains start from the same chain defaults.

func defaultConfig() Config {
	d := DefaultConfig()
	chainDefaults := integration.ChainConfig{
		GasLimit:            d.Chain.GasLimit,
		GasPrice:            d.Chain.GasPrice,
		ReceiptPollInterval: d.Chain.ReceiptPollInterval,
	}
	return Config{
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
		},
		Preset: d.Foreign.Preset,
		Relay: integration.Config{
			Home:             chainDefaults,
			Side:             chainDefaults,
			ProxyAddr:        d.Server.ProxyAddr,
			GovernanceAddr:   d.Server.GovernanceAddr,
			Metrics:          d.Server.Metrics,
			UnavailableDelay: d.Server.UnavailableDelay,
			Foreign: integration.ForeignConfig{
				Timeout: d.Foreign.Timeout,
			},
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file and CLI/env
// overrides, then fills unset foreign settings from the selected preset.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	preset, err := integration.GetPresetByName(cfg.Preset)
	if err != nil {
		return cfg, err
	}
	integration.ApplyPreset(&cfg.Relay.Foreign, preset)
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(raw, cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("preset") {
		cfg.Preset = ctx.String("preset")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	r := &cfg.Relay
	if ctx.IsSet("home.rpc") {
		r.Home.RPCURL = ctx.String("home.rpc")
	}
	if ctx.IsSet("home.chainid") {
		r.Home.ChainID = ctx.Uint64("home.chainid")
	}
	if ctx.IsSet("home.bridge") {
		r.HomeBridge = ctx.String("home.bridge")
	}
	if ctx.IsSet("home.token") {
		r.HomeToken = ctx.String("home.token")
	}
	if ctx.IsSet("side.rpc") {
		r.Side.RPCURL = ctx.String("side.rpc")
	}
	if ctx.IsSet("side.chainid") {
		r.Side.ChainID = ctx.Uint64("side.chainid")
	}
	if ctx.IsSet("side.shareddb") {
		r.SideSharedDB = ctx.String("side.shareddb")
	}
	if ctx.IsSet("validator.key") {
		r.ValidatorKey = ctx.String("validator.key")
	}

	// gas and polling flags apply to both chains
	if ctx.IsSet("gas.limit") {
		r.Home.GasLimit = ctx.Uint64("gas.limit")
		r.Side.GasLimit = ctx.Uint64("gas.limit")
	}
	if ctx.IsSet("gas.price") {
		r.Home.GasPrice = ctx.Uint64("gas.price")
		r.Side.GasPrice = ctx.Uint64("gas.price")
	}
	if ctx.IsSet("receipt.poll") {
		r.Home.ReceiptPollInterval = ctx.Duration("receipt.poll")
		r.Side.ReceiptPollInterval = ctx.Duration("receipt.poll")
	}

	if ctx.IsSet("proxy.addr") {
		r.ProxyAddr = ctx.String("proxy.addr")
	}
	if ctx.IsSet("votes.addr") {
		r.GovernanceAddr = ctx.String("votes.addr")
	}
	if ctx.IsSet("votes.cors") {
		r.CORSOrigins = splitCSV(ctx.String("votes.cors"))
	}
	if ctx.IsSet("metrics") {
		r.Metrics = ctx.Bool("metrics")
	}
	if ctx.IsSet("get.delay") {
		r.UnavailableDelay = ctx.Duration("get.delay")
	}

	if ctx.IsSet("foreign.url") {
		r.Foreign.URL = ctx.String("foreign.url")
	}
	if ctx.IsSet("foreign.asset") {
		r.Foreign.Asset = ctx.String("foreign.asset")
	}
	if ctx.IsSet("foreign.native") {
		r.Foreign.NativeAsset = ctx.String("foreign.native")
	}
	if ctx.IsSet("foreign.hrp") {
		r.Foreign.HRP = ctx.String("foreign.hrp")
	}
	if ctx.IsSet("foreign.timeout") {
		r.Foreign.Timeout = ctx.Duration("foreign.timeout")
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
