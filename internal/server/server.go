// Package server exposes the pricer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/contract"
	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// MaxBodyBytes bounds the size of a POST /v1/price body.
const MaxBodyBytes = 4 << 10

// PriceRequest is the body of POST /v1/price. Each field accepts a JSON
// string ("0.05") or a JSON number (0.05); all five are required.
type PriceRequest struct {
	Stock    *decimal.Decimal `json:"stock"`
	Strike   *decimal.Decimal `json:"strike"`
	Rate     *decimal.Decimal `json:"rate"`
	Sigma    *decimal.Decimal `json:"sigma"`
	Maturity *decimal.Decimal `json:"maturity"`
}

func (r PriceRequest) parameters() (pricing.OptionParameters, error) {
	fields := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"stock", r.Stock},
		{"strike", r.Strike},
		{"rate", r.Rate},
		{"sigma", r.Sigma},
		{"maturity", r.Maturity},
	}
	for _, f := range fields {
		if f.v == nil {
			return pricing.OptionParameters{}, fmt.Errorf("missing field %q", f.name)
		}
	}
	return pricing.OptionParameters{
		Stock:    *r.Stock,
		Strike:   *r.Strike,
		Rate:     *r.Rate,
		Sigma:    *r.Sigma,
		Maturity: *r.Maturity,
	}, nil
}

// PriceResponse carries the price both as a decimal string and as its
// (mantissa, scale) pair. The mantissa is a string since it may exceed the
// range of a JSON number.
type PriceResponse struct {
	Price    string `json:"price"`
	Mantissa string `json:"mantissa"`
	Scale    uint32 `json:"scale"`
}

// ErrorResponse is returned with 4xx statuses. Kind is set for arithmetic
// failures only.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Server routes pricing requests to the contract entry point.
type Server struct {
	router   *mux.Router
	contract contract.BlackScholes
}

// New builds a server with all routes registered.
func New() *Server {
	s := &Server{router: mux.NewRouter()}
	s.router.HandleFunc("/v1/price", s.PriceHandler).Methods("POST")
	s.router.HandleFunc("/v1/reference", s.ReferenceHandler).Methods("GET")
	s.router.HandleFunc("/health", HealthHandler).Methods("GET")
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	logger.Infof("starting REST server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// PriceHandler prices the parameters in the request body.
func (s *Server) PriceHandler(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	p, err := req.parameters()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.respond(w, p)
}

// ReferenceHandler prices the built-in reference scenario.
func (s *Server) ReferenceHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, contract.Reference())
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) respond(w http.ResponseWriter, p pricing.OptionParameters) {
	mantissa, scale, err := s.contract.ComputeWith(p)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: decmath.Kind(err)})
		return
	}
	writeJSON(w, http.StatusOK, newPriceResponse(mantissa, scale))
}

func newPriceResponse(mantissa, scale *big.Int) PriceResponse {
	s := uint32(scale.Uint64())
	return PriceResponse{
		Price:    decimal.NewFromBigInt(mantissa, -int32(s)).String(),
		Mantissa: mantissa.String(),
		Scale:    s,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("writing response: %v", err)
	}
}
