package integration

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-bridge-relay/chain"
)

// ChainConfig describes one EVM network the relay submits to.
type ChainConfig struct {
	RPCURL              string        `yaml:"rpc"`
	ChainID             uint64        `yaml:"chainId"`  // 0: ask the node
	GasLimit            uint64        `yaml:"gasLimit"`
	GasPrice            uint64        `yaml:"gasPrice"` // wei, 0: node suggestion
	ReceiptPollInterval time.Duration `yaml:"receiptPoll"`
}

type ForeignConfig struct {
	URL         string        `yaml:"url"`
	Asset       string        `yaml:"asset"`
	NativeAsset string        `yaml:"nativeAsset"`
	HRP         string        `yaml:"hrp"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Config is everything needed to assemble a running relay.
type Config struct {
	Home ChainConfig `yaml:"home"`
	Side ChainConfig `yaml:"side"`

	HomeBridge   string `yaml:"homeBridge"`
	HomeToken    string `yaml:"homeToken"`
	SideSharedDB string `yaml:"sideSharedDB"`
	ValidatorKey string `yaml:"validatorKey"`

	ProxyAddr      string   `yaml:"proxyAddr"`
	GovernanceAddr string   `yaml:"governanceAddr"`
	CORSOrigins    []string `yaml:"corsOrigins"`
	Metrics        bool     `yaml:"metrics"`

	UnavailableDelay time.Duration `yaml:"unavailableDelay"`

	Foreign ForeignConfig `yaml:"foreign"`
}

var errMissing = errors.New("missing required setting")

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"home.rpc", c.Home.RPCURL},
		{"side.rpc", c.Side.RPCURL},
		{"home.bridge", c.HomeBridge},
		{"home.token", c.HomeToken},
		{"side.shareddb", c.SideSharedDB},
		{"validator.key", c.ValidatorKey},
		{"proxy.addr", c.ProxyAddr},
		{"votes.addr", c.GovernanceAddr},
		{"foreign.hrp", c.Foreign.HRP},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", errMissing, r.name)
		}
	}
	addresses := []struct {
		name, value string
	}{
		{"home.bridge", c.HomeBridge},
		{"home.token", c.HomeToken},
		{"side.shareddb", c.SideSharedDB},
	}
	for _, a := range addresses {
		if !common.IsHexAddress(a.value) {
			return fmt.Errorf("%s: invalid address %q", a.name, a.value)
		}
	}
	if c.Home.GasLimit == 0 || c.Side.GasLimit == 0 {
		return fmt.Errorf("%w: gas.limit", errMissing)
	}
	if c.UnavailableDelay < 0 {
		return fmt.Errorf("get.delay must not be negative")
	}
	return nil
}

func (c ChainConfig) rpcConfig(name string) chain.Config {
	cfg := chain.Config{
		Name:                name,
		URL:                 c.RPCURL,
		GasLimit:            c.GasLimit,
		ReceiptPollInterval: c.ReceiptPollInterval,
	}
	if c.ChainID != 0 {
		cfg.ChainID = new(big.Int).SetUint64(c.ChainID)
	}
	if c.GasPrice != 0 {
		cfg.GasPrice = new(big.Int).SetUint64(c.GasPrice)
	}
	return cfg
}
