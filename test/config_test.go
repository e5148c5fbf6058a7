package test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-bridge-relay/cmd/relay/launcher"
	"github.com/rony4d/go-bridge-relay/flags"
)

// helper to run MakeAllConfigs with a synthetic CLI context.

func runConfigFromArgs(t *testing.T, args []string) (launcher.Config, error) {

	t.Helper()

	app := cli.NewApp()

	app.HideHelp = true
	app.HideVersion = true

	// Register every flag group the relay declares.
	app.Flags = flags.AllFlags()

	var (
		got     launcher.Config
		makeErr error
	)

	app.Action = func(c *cli.Context) error {
		got, makeErr = launcher.MakeAllConfigs(c)
		return nil
	}

	if err := app.Run(append([]string{"bridge-relay"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, makeErr
}

// TestMakeAllConfigs_defaults checks the values a relay starts from when
// nothing is configured.
func TestMakeAllConfigs_defaults(t *testing.T) {
	cfg, err := runConfigFromArgs(t, nil)
	if err != nil {
		t.Fatalf("MakeAllConfigs: %v", err)
	}
	if cfg.Relay.ProxyAddr != ":8001" || cfg.Relay.GovernanceAddr != ":8002" {
		t.Fatalf("listen addrs = %q/%q, want :8001/:8002", cfg.Relay.ProxyAddr, cfg.Relay.GovernanceAddr)
	}
	if cfg.Relay.UnavailableDelay != time.Second {
		t.Fatalf("UnavailableDelay = %v, want 1s", cfg.Relay.UnavailableDelay)
	}
	if cfg.Relay.Home.GasLimit == 0 || cfg.Relay.Side.GasLimit == 0 {
		t.Fatal("gas limit defaults missing")
	}
	// the default preset fills the foreign ledger settings
	if cfg.Relay.Foreign.HRP != "tbnb" || cfg.Relay.Foreign.NativeAsset != "BNB" {
		t.Fatalf("Foreign = %#v, want tbnb/BNB", cfg.Relay.Foreign)
	}
	if cfg.Logging.Verbosity != 3 {
		t.Fatalf("Verbosity = %d, want 3", cfg.Logging.Verbosity)
	}
}

// TestMakeAllConfigs_flagOverrides verifies that every command-line flag we
// declare overrides the corresponding field in the aggregated Config.
func TestMakeAllConfigs_flagOverrides(t *testing.T) {

	tests := []struct {
		name string                                  // descriptive name for the scenario
		args []string                                // CLI arguments to feed into MakeAllConfigs
		want func(t *testing.T, cfg launcher.Config) // assertion helper examining the final config
	}{
		{
			name: "chains and contracts",
			args: []string{
				"--home.rpc", "http://home:8545", "--home.chainid", "4002",
				"--home.bridge", "0xb000000000000000000000000000000000000000",
				"--side.rpc", "http://side:8545", "--side.shareddb", "0xd000000000000000000000000000000000000000",
			},
			want: func(t *testing.T, cfg launcher.Config) {
				if cfg.Relay.Home.RPCURL != "http://home:8545" || cfg.Relay.Home.ChainID != 4002 {
					t.Fatalf("Home = %#v", cfg.Relay.Home)
				}
				if cfg.Relay.Side.RPCURL != "http://side:8545" || cfg.Relay.Side.ChainID != 0 {
					t.Fatalf("Side = %#v", cfg.Relay.Side)
				}
				if cfg.Relay.SideSharedDB != "0xd000000000000000000000000000000000000000" {
					t.Fatalf("SideSharedDB = %q", cfg.Relay.SideSharedDB)
				}
			},
		},

		{
			name: "gas applies to both chains",
			args: []string{"--gas.limit", "250000", "--gas.price", "1000000000", "--receipt.poll", "2s"},
			want: func(t *testing.T, cfg launcher.Config) {
				for _, c := range []struct {
					name  string
					limit uint64
					price uint64
					poll  time.Duration
				}{
					{"home", cfg.Relay.Home.GasLimit, cfg.Relay.Home.GasPrice, cfg.Relay.Home.ReceiptPollInterval},
					{"side", cfg.Relay.Side.GasLimit, cfg.Relay.Side.GasPrice, cfg.Relay.Side.ReceiptPollInterval},
				} {
					if c.limit != 250000 || c.price != 1000000000 || c.poll != 2*time.Second {
						t.Fatalf("%s gas = %d/%d/%v", c.name, c.limit, c.price, c.poll)
					}
				}
			},
		},

		{
			name: "servers and cors",
			args: []string{"--proxy.addr", "127.0.0.1:9001", "--votes.cors", "https://a.example, https://b.example", "--metrics", "--get.delay", "250ms"},
			want: func(t *testing.T, cfg launcher.Config) {
				if cfg.Relay.ProxyAddr != "127.0.0.1:9001" {
					t.Fatalf("ProxyAddr = %q", cfg.Relay.ProxyAddr)
				}
				if len(cfg.Relay.CORSOrigins) != 2 || cfg.Relay.CORSOrigins[1] != "https://b.example" {
					t.Fatalf("CORSOrigins = %#v, want two trimmed entries", cfg.Relay.CORSOrigins)
				}
				if !cfg.Relay.Metrics || cfg.Relay.UnavailableDelay != 250*time.Millisecond {
					t.Fatalf("Metrics/UnavailableDelay = %v/%v", cfg.Relay.Metrics, cfg.Relay.UnavailableDelay)
				}
			},
		},

		{
			name: "preset with an explicit hrp",
			args: []string{"--preset", "binance", "--foreign.hrp", "tbnb", "--foreign.asset", "DEV-BE4"},
			want: func(t *testing.T, cfg launcher.Config) {
				if cfg.Relay.Foreign.URL != "https://dex.binance.org" {
					t.Fatalf("URL = %q", cfg.Relay.Foreign.URL)
				}
				if cfg.Relay.Foreign.HRP != "tbnb" || cfg.Relay.Foreign.Asset != "DEV-BE4" {
					t.Fatalf("Foreign = %#v", cfg.Relay.Foreign)
				}
			},
		},

		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--log.color"},
			want: func(t *testing.T, cfg launcher.Config) {
				if cfg.Logging.Format != "json" || cfg.Logging.Verbosity != 5 || !cfg.Logging.Color {
					t.Fatalf("Logging = %#v", cfg.Logging)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, test.args)
			if err != nil {
				t.Fatalf("MakeAllConfigs: %v", err)
			}
			test.want(t, cfg)
			t.Logf("args = %#v", test.args) //	NOTE: this will only be printed if the test fails
		})
	}
}

// TestMakeAllConfigs_env covers the environment variables operators of the
// previous deployments already set.
func TestMakeAllConfigs_env(t *testing.T) {
	env := map[string]string{
		"HOME_RPC_URL":          "http://env-home:8545",
		"VALIDATOR_PRIVATE_KEY": "0xabc",
		"FOREIGN_ASSET":         "ENV-123",
	}
	for k, v := range env {
		os.Setenv(k, v)
	}
	defer func() {
		for k := range env {
			os.Unsetenv(k)
		}
	}()

	cfg, err := runConfigFromArgs(t, []string{"--foreign.asset", "FLAG-1"})
	if err != nil {
		t.Fatalf("MakeAllConfigs: %v", err)
	}
	if cfg.Relay.Home.RPCURL != "http://env-home:8545" {
		t.Fatalf("Home.RPCURL = %q", cfg.Relay.Home.RPCURL)
	}
	if cfg.Relay.ValidatorKey != "0xabc" {
		t.Fatalf("ValidatorKey = %q", cfg.Relay.ValidatorKey)
	}
	// a flag beats its environment variable
	if cfg.Relay.Foreign.Asset != "FLAG-1" {
		t.Fatalf("Foreign.Asset = %q, want FLAG-1", cfg.Relay.Foreign.Asset)
	}
}

// TestMakeAllConfigs_file loads a YAML file and lets flags override it.
func TestMakeAllConfigs_file(t *testing.T) {
	dir, err := ioutil.TempDir("", "relay-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "relay.yaml")
	content := `
logging:
  verbosity: 4
preset: binance-testnet
home:
  rpc: http://file-home:8545
  gasLimit: 300000
side:
  rpc: http://file-side:8545
homeBridge: "0xb000000000000000000000000000000000000000"
unavailableDelay: 3s
corsOrigins: ["https://ops.example"]
foreign:
  asset: FILE-1
`
	if err := ioutil.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := runConfigFromArgs(t, []string{"--config", path, "--side.rpc", "http://flag-side:8545"})
	if err != nil {
		t.Fatalf("MakeAllConfigs: %v", err)
	}
	if cfg.Logging.Verbosity != 4 {
		t.Fatalf("Verbosity = %d, want 4", cfg.Logging.Verbosity)
	}
	if cfg.Relay.Home.RPCURL != "http://file-home:8545" || cfg.Relay.Home.GasLimit != 300000 {
		t.Fatalf("Home = %#v", cfg.Relay.Home)
	}
	if cfg.Relay.Side.RPCURL != "http://flag-side:8545" {
		t.Fatalf("Side.RPCURL = %q, want the flag value", cfg.Relay.Side.RPCURL)
	}
	if cfg.Relay.UnavailableDelay != 3*time.Second {
		t.Fatalf("UnavailableDelay = %v", cfg.Relay.UnavailableDelay)
	}
	if cfg.Relay.Foreign.Asset != "FILE-1" || cfg.Relay.Foreign.URL != "https://testnet-dex.binance.org" {
		t.Fatalf("Foreign = %#v", cfg.Relay.Foreign)
	}
	if len(cfg.Relay.CORSOrigins) != 1 {
		t.Fatalf("CORSOrigins = %#v", cfg.Relay.CORSOrigins)
	}
}

// TestMakeAllConfigs_errors covers inputs the launcher must refuse.
func TestMakeAllConfigs_errors(t *testing.T) {
	if _, err := runConfigFromArgs(t, []string{"--config", "/nonexistent/relay.yaml"}); err == nil {
		t.Fatal("missing config file accepted")
	}
	if _, err := runConfigFromArgs(t, []string{"--preset", "ropsten"}); err == nil {
		t.Fatal("unknown preset accepted")
	}

	dir, err := ioutil.TempDir("", "relay-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "bad.yaml")
	if err := ioutil.WriteFile(path, []byte("noSuchSetting: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := runConfigFromArgs(t, []string{"--config", path}); err == nil {
		t.Fatal("unknown config key accepted")
	}
}
