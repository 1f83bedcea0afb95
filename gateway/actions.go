package gateway

import (
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func chiURLParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func parseBigSlice(values []string) ([]*big.Int, error) {
	parsed := make([]*big.Int, 0, len(values))
	for _, value := range values {
		amount, err := parseBig(value)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, amount)
	}
	return parsed, nil
}

func (s *Server) callerAndObject(w http.ResponseWriter, r *http.Request) ([20]byte, uint64, bool) {
	caller, err := s.caller(r)
	if err != nil {
		writeError(w, err)
		return [20]byte{}, 0, false
	}
	objectID, err := uintParam(r, "objectID")
	if err != nil {
		writeError(w, err)
		return [20]byte{}, 0, false
	}
	return caller, objectID, true
}

// objectAction runs a bodyless caller+object operation.
func (s *Server) objectAction(w http.ResponseWriter, r *http.Request, fn func(caller [20]byte, objectID uint64) error) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	if err := fn(caller, objectID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// earningsAction runs an earnings mutation taking a single amount.
func (s *Server) earningsAction(w http.ResponseWriter, r *http.Request, fn func(caller [20]byte, objectID uint64, amount *big.Int) error) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseBig(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fn(caller, objectID, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tokenAssetAction runs a token operation settling in a chosen asset and
// responds with the asset amount moved.
func (s *Server) tokenAssetAction(w http.ResponseWriter, r *http.Request, fn func(caller [20]byte, objectID, tokenID uint64, asset string) (string, error)) {
	caller, objectID, ok := s.callerAndObject(w, r)
	if !ok {
		return
	}
	tokenID, err := uintParam(r, "tokenID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Asset string `json:"asset"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := fn(caller, objectID, tokenID, req.Asset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"assetAmount": amount})
}
