package integration

import "fmt"

// Presets bundle the foreign ledger settings that belong together: the
// bech32 prefix, the native asset symbol and a public API endpoint. An
// operator picks one by name and overrides single fields with flags.
//
// Usage:
//   cfg := integration.BinanceTestnetPreset() // tbnb addresses
//   cfg := integration.BinancePreset()        // mainnet

// PresetConfig captures the parameters that vary across foreign networks.
type PresetConfig struct {
	Name        string
	URL         string
	HRP         string
	NativeAsset string
}

// DefaultPreset leaves the endpoint empty; balance lookups then report
// zero until foreign.url is configured.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:        "default",
		HRP:         "tbnb",
		NativeAsset: "BNB",
	}
}

// BinanceTestnetPreset targets the Binance Chain testnet.
func BinanceTestnetPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "binance-testnet"
	cfg.URL = "https://testnet-dex.binance.org"
	return cfg
}

// BinancePreset targets Binance Chain mainnet.
func BinancePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "binance"
	cfg.URL = "https://dex.binance.org"
	cfg.HRP = "bnb"
	return cfg
}

// GetPresetByName returns the preset with the given name. An empty name
// selects the default.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "", "default":
		return DefaultPreset(), nil
	case "binance-testnet":
		return BinanceTestnetPreset(), nil
	case "binance":
		return BinancePreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset %q", name)
	}
}

// ApplyPreset copies the preset into target, keeping the fields target
// already set.
func ApplyPreset(target *ForeignConfig, preset PresetConfig) {
	if target.URL == "" {
		target.URL = preset.URL
	}
	if target.HRP == "" {
		target.HRP = preset.HRP
	}
	if target.NativeAsset == "" {
		target.NativeAsset = preset.NativeAsset
	}
}
