package gateway

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"brickshare/native/factory"
	"brickshare/native/object"
	"brickshare/native/vaults"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var notFoundErrors = []error{
	object.ErrObjectNotFound,
	object.ErrTokenNotFound,
	object.ErrStageNotFound,
	object.ErrVotingNotFound,
}

var forbiddenErrors = []error{
	object.ErrOnlyOwnersMultisig,
	object.ErrOnlyAdministrator,
	object.ErrOnlyFactory,
	object.ErrOnlyTokenOwner,
	factory.ErrOnlyOwnersMultisig,
	vaults.ErrOnlyAdministrator,
	vaults.ErrOnlyTokenOwner,
}

var unavailableErrors = []error{
	object.ErrPaused,
	vaults.ErrPaused,
}

func statusForError(err error) int {
	for _, candidate := range notFoundErrors {
		if errors.Is(err, candidate) {
			return http.StatusNotFound
		}
	}
	for _, candidate := range forbiddenErrors {
		if errors.Is(err, candidate) {
			return http.StatusForbidden
		}
	}
	for _, candidate := range unavailableErrors {
		if errors.Is(err, candidate) {
			return http.StatusServiceUnavailable
		}
	}
	if errors.Is(err, object.ErrInsufficientBalance) || errors.Is(err, vaults.ErrInsufficientFunds) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

func parseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if len(trimmed) != 40 {
		return addr, fmt.Errorf("address %q must be 20 hex bytes", value)
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("address %q is not valid hex", value)
	}
	copy(addr[:], raw)
	return addr, nil
}

func hexAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func parseBig(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return parsed, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
