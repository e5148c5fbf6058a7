package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/go-bridge-relay/adapter"
	"github.com/rony4d/go-bridge-relay/api"
	"github.com/rony4d/go-bridge-relay/chain"
	"github.com/rony4d/go-bridge-relay/confirm"
	"github.com/rony4d/go-bridge-relay/contracts/bridge"
	"github.com/rony4d/go-bridge-relay/contracts/erc20"
	"github.com/rony4d/go-bridge-relay/contracts/shareddb"
	"github.com/rony4d/go-bridge-relay/foreign"
	"github.com/rony4d/go-bridge-relay/inter/validatorpk"
	"github.com/rony4d/go-bridge-relay/metrics"
	"github.com/rony4d/go-bridge-relay/signup"
	"github.com/rony4d/go-bridge-relay/status"
	"github.com/rony4d/go-bridge-relay/txsender"
	"github.com/rony4d/go-bridge-relay/voting"
)

const shutdownTimeout = 10 * time.Second

// Relay is an assembled validator relay: two HTTP surfaces over one
// sequencer per chain.
type Relay struct {
	Validator common.Address

	ProxyHandler      http.Handler
	GovernanceHandler http.Handler

	proxy      *api.Server
	governance *api.Server
	closers    []func()
	log        logrus.FieldLogger
}

// New dials both chains with the configured validator key and builds the
// relay on top of them.
func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (*Relay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := validatorpk.FromHex(cfg.ValidatorKey)
	if err != nil {
		return nil, fmt.Errorf("validator key: %w", err)
	}

	home, err := chain.Dial(ctx, cfg.Home.rpcConfig("home"), key, log)
	if err != nil {
		return nil, err
	}
	side, err := chain.Dial(ctx, cfg.Side.rpcConfig("side"), key, log)
	if err != nil {
		home.Close()
		return nil, err
	}

	r, err := Build(ctx, cfg, key.Address(), home, side, prometheus.NewRegistry(), log)
	if err != nil {
		home.Close()
		side.Close()
		return nil, err
	}
	r.closers = append(r.closers, home.Close, side.Close)
	return r, nil
}

// Build wires every component over already connected chain clients. Both
// sequencers read their starting nonce here, so the chains must be
// reachable.
func Build(ctx context.Context, cfg Config, self common.Address, home, side chain.Client, reg prometheus.Registerer, log logrus.FieldLogger) (*Relay, error) {
	m := metrics.New(reg)

	homeSeq, err := txsender.New(ctx, home, self, log, m)
	if err != nil {
		return nil, fmt.Errorf("home sequencer: %w", err)
	}
	sideSeq, err := txsender.New(ctx, side, self, log, m)
	if err != nil {
		return nil, fmt.Errorf("side sequencer: %w", err)
	}

	bridgeAddr := common.HexToAddress(cfg.HomeBridge)
	bridgeC := bridge.New(bridgeAddr, home)
	db := shareddb.New(common.HexToAddress(cfg.SideSharedDB), side)
	token := erc20.New(common.HexToAddress(cfg.HomeToken), home)

	agg := status.New(status.Config{
		HomeBridge:   bridgeAddr,
		ForeignHRP:   cfg.Foreign.HRP,
		ForeignAsset: cfg.Foreign.Asset,
		NativeAsset:  cfg.Foreign.NativeAsset,
	}, bridgeC, token, foreign.New(cfg.Foreign.URL, cfg.Foreign.Timeout, log), log)

	proxy := api.NewProxy(
		adapter.New(bridgeC, db, sideSeq, cfg.UnavailableDelay, log, m),
		signup.New(self, bridgeC, db, sideSeq, log),
		confirm.New(bridgeAddr, homeSeq, log),
		log,
	)
	var metricsHandler http.Handler
	if cfg.Metrics {
		metricsHandler = m.Handler()
	}
	governance := api.NewGovernance(voting.New(bridgeAddr, homeSeq, log, m), agg, metricsHandler, cfg.CORSOrigins, log)

	r := &Relay{
		Validator:         self,
		ProxyHandler:      proxy.Handler(),
		GovernanceHandler: governance.Handler(),
		log:               log,
	}
	r.proxy = api.NewServer("proxy", cfg.ProxyAddr, r.ProxyHandler, log)
	r.governance = api.NewServer("governance", cfg.GovernanceAddr, r.GovernanceHandler, log)
	return r, nil
}

// Run serves both surfaces until ctx is cancelled or one of them fails,
// then shuts both down.
func (r *Relay) Run(ctx context.Context) error {
	r.log.WithField("validator", r.Validator.Hex()).Warn("Relay started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(r.proxy.Serve)
	g.Go(r.governance.Serve)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		perr := r.proxy.Shutdown(sctx)
		gerr := r.governance.Shutdown(sctx)
		if perr != nil {
			return perr
		}
		return gerr
	})
	return g.Wait()
}

// Close releases the chain connections.
func (r *Relay) Close() {
	for _, c := range r.closers {
		c()
	}
}
