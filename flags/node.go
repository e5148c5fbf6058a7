package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// ServerFlags holds the HTTP surfaces and the foreign ledger lookup.

func ServerFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "proxy.addr",
			Usage:  "Listen address of the MPC proxy",
			Value:  ":8001",
			EnvVar: "PROXY_ADDR",
		},
		cli.StringFlag{
			Name:   "votes.addr",
			Usage:  "Listen address of the governance surface",
			Value:  ":8002",
			EnvVar: "VOTES_PROXY_ADDR",
		},
		cli.StringFlag{
			Name:   "votes.cors",
			Usage:  "Comma-separated CORS origins of the governance surface (empty = any)",
			EnvVar: "VOTES_CORS_ORIGINS",
		},
		cli.BoolFlag{
			Name:   "metrics",
			Usage:  "Serve Prometheus metrics at /metrics on the governance surface",
			EnvVar: "METRICS_ENABLED",
		},
		cli.DurationFlag{
			Name:   "get.delay",
			Usage:  "How long /get holds a not-yet-available answer",
			Value:  time.Second,
			EnvVar: "GET_UNAVAILABLE_DELAY",
		},
		cli.StringFlag{
			Name:   "foreign.url",
			Usage:  "REST endpoint of the foreign ledger",
			EnvVar: "FOREIGN_URL",
		},
		cli.StringFlag{
			Name:   "foreign.asset",
			Usage:  "Symbol of the bridged asset on the foreign ledger",
			EnvVar: "FOREIGN_ASSET",
		},
		cli.StringFlag{
			Name:   "foreign.native",
			Usage:  "Symbol of the foreign ledger's native asset",
			EnvVar: "FOREIGN_NATIVE_ASSET",
		},
		cli.StringFlag{
			Name:   "foreign.hrp",
			Usage:  "Bech32 prefix of foreign ledger addresses",
			EnvVar: "FOREIGN_HRP",
		},
		cli.DurationFlag{
			Name:   "foreign.timeout",
			Usage:  "Timeout of one foreign balance lookup",
			Value:  10 * time.Second,
			EnvVar: "FOREIGN_TIMEOUT",
		},
	}
}
