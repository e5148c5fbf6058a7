package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-bridge-relay/adapter"
	"github.com/rony4d/go-bridge-relay/inter"
	"github.com/rony4d/go-bridge-relay/signup"
)

const maxBodySize = 8 << 20

// errBadRequest marks malformed input; it maps to 400.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// flexUint accepts a JSON number, a decimal string or an empty string
// (zero). MPC peers send party indices both ways.
type flexUint uint64

func (u *flexUint) UnmarshalJSON(input []byte) error {
	s := string(bytes.TrimSpace(input))
	if s == "null" {
		*u = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*u = 0
			return nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid index %s", input)
	}
	*u = flexUint(v)
	return nil
}

// wireKey is the MPC peers' key: first = sender party index, second =
// round, third = session id, fourth = target party index (0 or empty for
// broadcast).
type wireKey struct {
	First  flexUint `json:"first"`
	Second string   `json:"second"`
	Third  string   `json:"third"`
	Fourth flexUint `json:"fourth"`
}

func parseKey(raw json.RawMessage) (inter.ProtocolKey, error) {
	if len(raw) == 0 {
		return inter.ProtocolKey{}, badRequest("missing key")
	}
	var k wireKey
	if err := json.Unmarshal(raw, &k); err != nil {
		return inter.ProtocolKey{}, badRequest("key: %v", err)
	}
	session, err := inter.ParseSessionID(k.Third)
	if err != nil {
		return inter.ProtocolKey{}, badRequest("key: %v", err)
	}
	return inter.ProtocolKey{
		PeerIndex: uint64(k.First),
		Round:     k.Second,
		Session:   session,
		Target:    uint64(k.Fourth),
	}, nil
}

// parseBigHex parses hex with or without 0x.
func parseBigHex(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	v, ok := new(big.Int).SetString(s, 16)
	if !ok || v.Sign() < 0 {
		return nil, badRequest("invalid hex number %q", s)
	}
	return v, nil
}

// parseAmount accepts a JSON number or a decimal or 0x-hex string.
func parseAmount(raw json.RawMessage) (*big.Int, error) {
	s := string(bytes.TrimSpace(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, badRequest("value: %v", err)
		}
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok || v.Sign() < 0 {
		return nil, badRequest("invalid value %q", s)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return badRequest("body: %v", err)
	}
	return nil
}

func okResult(v interface{}) map[string]interface{} {
	return map[string]interface{}{"Ok": v}
}

func errResult(v interface{}) map[string]interface{} {
	return map[string]interface{}{"Err": v}
}

type errMessage struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to the response MPC peers expect. Only
// malformed requests and chain failures are HTTP errors.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, adapter.ErrNotAvailable):
		writeJSON(w, http.StatusOK, errResult(nil))
	case errors.Is(err, signup.ErrNotAuthorized):
		writeJSON(w, http.StatusOK, errResult(errMessage{Message: "Not a validator"}))
	case errors.Is(err, errBadRequest):
		log.WithError(err).Debug("Bad request")
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// the client went away; nobody reads this response
		log.WithError(err).Debug("Request cancelled")
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		log.WithError(err).Error("Request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
