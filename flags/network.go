package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// ChainFlags covers the two chains, the contracts on them and the
// validator account submitting there.

func ChainFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "home.rpc",
			Usage:  "JSON-RPC endpoint of the home (governance) chain",
			EnvVar: "HOME_RPC_URL",
		},
		cli.Uint64Flag{
			Name:   "home.chainid",
			Usage:  "Home chain id (0 = ask the node)",
			EnvVar: "HOME_CHAIN_ID",
		},
		cli.StringFlag{
			Name:   "home.bridge",
			Usage:  "Bridge contract address on the home chain",
			EnvVar: "HOME_BRIDGE_ADDRESS",
		},
		cli.StringFlag{
			Name:   "home.token",
			Usage:  "Bridged ERC20 token address on the home chain",
			EnvVar: "HOME_TOKEN_ADDRESS",
		},
		cli.StringFlag{
			Name:   "side.rpc",
			Usage:  "JSON-RPC endpoint of the side (shared storage) chain",
			EnvVar: "SIDE_RPC_URL",
		},
		cli.Uint64Flag{
			Name:   "side.chainid",
			Usage:  "Side chain id (0 = ask the node)",
			EnvVar: "SIDE_CHAIN_ID",
		},
		cli.StringFlag{
			Name:   "side.shareddb",
			Usage:  "SharedDB contract address on the side chain",
			EnvVar: "SIDE_SHARED_DB_ADDRESS",
		},
		cli.StringFlag{
			Name:   "validator.key",
			Usage:  "Hex private key of the validator account",
			EnvVar: "VALIDATOR_PRIVATE_KEY",
		},
		cli.Uint64Flag{
			Name:   "gas.limit",
			Usage:  "Gas limit of every submitted transaction",
			Value:  1000000,
			EnvVar: "GAS_LIMIT",
		},
		cli.Uint64Flag{
			Name:   "gas.price",
			Usage:  "Gas price in wei (0 = node suggestion)",
			EnvVar: "GAS_PRICE",
		},
		cli.DurationFlag{
			Name:   "receipt.poll",
			Usage:  "Interval between receipt polls while awaiting confirmation",
			Value:  500 * time.Millisecond,
			EnvVar: "RECEIPT_POLL_INTERVAL",
		},
	}
}
