package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/inter/validatorpk"
)

// Config describes one network endpoint.
type Config struct {
	Name    string
	URL     string
	ChainID *big.Int // nil means ask the node

	GasLimit uint64
	GasPrice *big.Int // nil means eth_gasPrice at send time

	ReceiptPollInterval time.Duration
}

// RPCClient implements Client over a go-ethereum JSON-RPC connection,
// signing with the validator key.
type RPCClient struct {
	cfg    Config
	eth    *ethclient.Client
	key    *validatorpk.Key
	signer types.Signer
	log    logrus.FieldLogger
}

// Dial connects to cfg.URL and resolves the chain id.
func Dial(ctx context.Context, cfg Config, key *validatorpk.Key, log logrus.FieldLogger) (*RPCClient, error) {
	eth, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrNetwork, cfg.Name, err)
	}
	chainID := cfg.ChainID
	if chainID == nil {
		chainID, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("%w: %s chain id: %v", ErrNetwork, cfg.Name, err)
		}
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = 500 * time.Millisecond
	}
	return &RPCClient{
		cfg:    cfg,
		eth:    eth,
		key:    key,
		signer: types.NewEIP155Signer(chainID),
		log:    log.WithField("chain", cfg.Name),
	}, nil
}

func (c *RPCClient) Name() string {
	return c.cfg.Name
}

// Close drops the underlying connection.
func (c *RPCClient) Close() {
	c.eth.Close()
}

func (c *RPCClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		From: c.key.Address(),
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return nil, fmt.Errorf("%w: %s", ErrReverted, reason)
		}
		return nil, fmt.Errorf("%w: %s eth_call: %v", ErrNetwork, c.cfg.Name, err)
	}
	return out, nil
}

func (c *RPCClient) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("%w: %s nonce: %v", ErrNetwork, c.cfg.Name, err)
	}
	return nonce, nil
}

func (c *RPCClient) Send(ctx context.Context, to common.Address, data []byte, nonce uint64) (common.Hash, error) {
	gasPrice := c.cfg.GasPrice
	if gasPrice == nil {
		suggested, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("%w: %s gas price: %v", ErrNetwork, c.cfg.Name, err)
		}
		gasPrice = suggested
	}

	tx := types.NewTransaction(nonce, to, new(big.Int), c.cfg.GasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, c.signer, c.key.PrivateKey())
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s send nonce %d: %v", ErrNetwork, c.cfg.Name, nonce, err)
	}
	c.log.WithFields(logrus.Fields{
		"tx":    signed.Hash().Hex(),
		"nonce": nonce,
		"to":    to.Hex(),
	}).Debug("Transaction dispatched")
	return signed.Hash(), nil
}

// WaitReceipt polls eth_getTransactionReceipt until the transaction is
// mined. It has no deadline of its own; ctx bounds it.
func (c *RPCClient) WaitReceipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	backoff := retry.NewConstant(c.cfg.ReceiptPollInterval)

	var mined *types.Receipt
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.eth.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		mined = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s receipt %s: %v", ErrNetwork, c.cfg.Name, txHash.Hex(), err)
	}

	res := &Receipt{
		TxHash:  txHash,
		Status:  mined.Status == types.ReceiptStatusSuccessful,
		GasUsed: mined.GasUsed,
	}
	if mined.BlockNumber != nil {
		res.BlockNumber = mined.BlockNumber.Uint64()
	}
	if !res.Status {
		res.RevertReason = c.replay(ctx, txHash, mined.BlockNumber)
	}
	return res, nil
}

// replay re-executes a reverted transaction at its block to recover the
// revert reason. It is best effort: any failure yields an empty reason.
func (c *RPCClient) replay(ctx context.Context, txHash common.Hash, block *big.Int) string {
	tx, _, err := c.eth.TransactionByHash(ctx, txHash)
	if err != nil {
		return ""
	}
	_, err = c.eth.CallContract(ctx, ethereum.CallMsg{
		From:     c.key.Address(),
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}, block)
	if err == nil {
		return ""
	}
	reason, _ := revertReason(err)
	return reason
}

// revertReason extracts a decoded revert reason from a JSON-RPC error that
// carries revert data.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}
	raw, ok := dataErr.ErrorData().(string)
	if !ok {
		return dataErr.Error(), true
	}
	data, decErr := hexutil.Decode(raw)
	if decErr != nil {
		return dataErr.Error(), true
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return dataErr.Error(), true
	}
	return reason, true
}
