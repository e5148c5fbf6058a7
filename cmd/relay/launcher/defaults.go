package launcher

import "time"

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and flags override them.

type Defaults struct {
	Chain   ChainDefaults
	Server  ServerDefaults
	Foreign ForeignDefaults
	Logging LoggingDefaults
}

// ChainDefaults apply to both the home and the side chain.
type ChainDefaults struct {
	GasLimit            uint64        //	Gas limit of every relay transaction. Bridge votes and SharedDB writes of large rounds stay well below it.
	GasPrice            uint64        //	Fixed gas price in wei; 0 asks the node for its suggestion at send time.
	ReceiptPollInterval time.Duration //	Pause between receipt lookups while a request waits for its transaction to be mined.
}

// ServerDefaults holds the two HTTP surfaces.
type ServerDefaults struct {
	ProxyAddr        string        //	Listen address of the MPC peer facing API (/get, /set, /signup*, /confirm*, /transfer).
	GovernanceAddr   string        //	Listen address of the operator facing API (/vote/*, /info).
	UnavailableDelay time.Duration //	How long /get holds an answer for a round that is not stored yet, so polling peers back off.
	Metrics          bool          //	Serve Prometheus metrics on the governance address.
}

// ForeignDefaults describe the foreign ledger lookups behind /info.
type ForeignDefaults struct {
	Preset  string        //	Named foreign network profile, see integration.GetPresetByName.
	Timeout time.Duration //	Bound on one balance request.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Chain: ChainDefaults{
			GasLimit:            1000000,
			ReceiptPollInterval: 500 * time.Millisecond,
		},
		Server: ServerDefaults{
			ProxyAddr:        ":8001",
			GovernanceAddr:   ":8002",
			UnavailableDelay: time.Second,
		},
		Foreign: ForeignDefaults{
			Preset:  "default",
			Timeout: 10 * time.Second,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
	}
}
