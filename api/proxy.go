// Package api serves the relay's two HTTP surfaces: the operational proxy
// MPC peers talk to, and the governance surface operators use.
package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/inter"
)

// RoundStore is the MPC key/value exchange.
type RoundStore interface {
	Set(ctx context.Context, key inter.ProtocolKey, payload []byte) (common.Hash, error)
	Get(ctx context.Context, key inter.ProtocolKey) ([]byte, error)
}

// Signup registers the validator for MPC sessions.
type Signup interface {
	SignupKeygen(ctx context.Context) (inter.SessionID, uint64, error)
	SignupSign(ctx context.Context, input []byte) (inter.SessionID, uint64, error)
}

// Confirmations submits bridge confirmations.
type Confirmations interface {
	ConfirmKeygen(ctx context.Context, x, y *big.Int) (common.Hash, error)
	ConfirmFundsTransfer(ctx context.Context) (common.Hash, error)
	Transfer(ctx context.Context, hash common.Hash, to string, value *big.Int) (common.Hash, bool, error)
}

type Proxy struct {
	rounds  RoundStore
	signup  Signup
	confirm Confirmations
	log     logrus.FieldLogger
}

func NewProxy(rounds RoundStore, s Signup, c Confirmations, log logrus.FieldLogger) *Proxy {
	return &Proxy{
		rounds:  rounds,
		signup:  s,
		confirm: c,
		log:     log,
	}
}

// Handler routes the operational surface.
func (p *Proxy) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(p.log))
	r.HandleFunc("/get", p.get).Methods(http.MethodPost)
	r.HandleFunc("/set", p.set).Methods(http.MethodPost)
	r.HandleFunc("/signupkeygen", p.signupKeygen).Methods(http.MethodPost)
	r.HandleFunc("/signupsign", p.signupSign).Methods(http.MethodPost)
	r.HandleFunc("/confirmKeygen", p.confirmKeygen).Methods(http.MethodPost)
	r.HandleFunc("/confirmFundsTransfer", p.confirmFundsTransfer).Methods(http.MethodPost)
	r.HandleFunc("/transfer", p.transfer).Methods(http.MethodPost)
	return r
}

type entry struct {
	Key   json.RawMessage `json:"key"`
	Value *string         `json:"value,omitempty"`
}

func (p *Proxy) get(w http.ResponseWriter, r *http.Request) {
	var req entry
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, p.log, err)
		return
	}
	key, err := parseKey(req.Key)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	payload, err := p.rounds.Get(r.Context(), key)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	value := string(payload)
	writeJSON(w, http.StatusOK, okResult(entry{Key: req.Key, Value: &value}))
}

func (p *Proxy) set(w http.ResponseWriter, r *http.Request) {
	var req entry
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, p.log, err)
		return
	}
	key, err := parseKey(req.Key)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	if req.Value == nil {
		writeError(w, p.log, badRequest("missing value"))
		return
	}
	if _, err := p.rounds.Set(r.Context(), key, []byte(*req.Value)); err != nil {
		writeError(w, p.log, err)
		return
	}
	writeJSON(w, http.StatusOK, okResult(nil))
}

type signupResult struct {
	UUID   string `json:"uuid"`
	Number uint64 `json:"number"`
}

func (p *Proxy) signupKeygen(w http.ResponseWriter, r *http.Request) {
	session, party, err := p.signup.SignupKeygen(r.Context())
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	writeJSON(w, http.StatusOK, okResult(signupResult{UUID: session.String(), Number: party}))
}

func (p *Proxy) signupSign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Third string `json:"third"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, p.log, err)
		return
	}
	input, err := hexutil.Decode("0x" + strings.TrimPrefix(req.Third, "0x"))
	if err != nil {
		writeError(w, p.log, badRequest("third: %v", err))
		return
	}
	session, party, err := p.signup.SignupSign(r.Context(), input)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	writeJSON(w, http.StatusOK, okResult(signupResult{UUID: session.String(), Number: party}))
}

type groupKeyBody struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// groupKeyIndex is where the keygen output array keeps the public key.
const groupKeyIndex = 5

// parseGroupKey accepts {x, y} or the keygen output array.
func parseGroupKey(raw json.RawMessage) (*big.Int, *big.Int, error) {
	var body groupKeyBody
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, nil, badRequest("body: %v", err)
		}
		if len(arr) <= groupKeyIndex {
			return nil, nil, badRequest("keygen output has %d elements", len(arr))
		}
		raw = arr[groupKeyIndex]
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, badRequest("body: %v", err)
	}
	x, err := parseBigHex(body.X)
	if err != nil {
		return nil, nil, err
	}
	y, err := parseBigHex(body.Y)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func (p *Proxy) confirmKeygen(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, p.log, err)
		return
	}
	x, y, err := parseGroupKey(raw)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	if _, err := p.confirm.ConfirmKeygen(r.Context(), x, y); err != nil {
		writeError(w, p.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (p *Proxy) confirmFundsTransfer(w http.ResponseWriter, r *http.Request) {
	if _, err := p.confirm.ConfirmFundsTransfer(r.Context()); err != nil {
		writeError(w, p.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (p *Proxy) transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hash  string          `json:"hash"`
		To    string          `json:"to"`
		Value json.RawMessage `json:"value"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, p.log, err)
		return
	}
	hash, err := hexutil.Decode(req.Hash)
	if err != nil || len(hash) != common.HashLength {
		writeError(w, p.log, badRequest("invalid hash %q", req.Hash))
		return
	}
	value, err := parseAmount(req.Value)
	if err != nil {
		writeError(w, p.log, err)
		return
	}
	if _, _, err := p.confirm.Transfer(r.Context(), common.BytesToHash(hash), req.To, value); err != nil {
		writeError(w, p.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
