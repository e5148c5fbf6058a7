package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the process-level flags: config file, preset and
// logging.

func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "YAML config file; flags and environment override it",
			EnvVar: "RELAY_CONFIG",
		},
		cli.StringFlag{
			Name:   "preset",
			Usage:  "Foreign network preset (default|binance-testnet|binance)",
			EnvVar: "RELAY_PRESET",
		},
		cli.StringFlag{
			Name:   "log.format",
			Usage:  "Log output format (text|json)",
			Value:  "text",
			EnvVar: "LOG_FORMAT",
		},
		cli.IntFlag{
			Name:   "log.verbosity",
			Usage:  "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value:  3,
			EnvVar: "LOG_VERBOSITY",
		},
		cli.BoolFlag{
			Name:   "log.color",
			Usage:  "Enable colored log output",
			EnvVar: "LOG_COLOR",
		},
		cli.StringFlag{
			Name:   "sentry.dsn",
			Usage:  "Ship error logs to this Sentry DSN",
			EnvVar: "SENTRY_DSN",
		},
	}
}
