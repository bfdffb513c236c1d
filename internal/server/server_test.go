package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contactkeval/option-pricer/internal/contract"
	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

func init() {
	logger.SetOutput(io.Discard)
}

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, req)
	return rec
}

func decodePrice(t *testing.T, rec *httptest.ResponseRecorder) PriceResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp PriceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestPriceHandler(t *testing.T) {
	want, err := pricing.Price(contract.Reference())
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	tests := []struct {
		name string
		body string
	}{
		{"strings", `{"stock":"100","strike":"105","rate":"0.05","sigma":"0.20","maturity":"1"}`},
		{"numbers", `{"stock":100,"strike":105,"rate":0.05,"sigma":0.2,"maturity":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "POST", "/v1/price", tt.body)
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			resp := decodePrice(t, rec)
			if resp.Price != want.String() {
				t.Errorf("price = %s, want %s", resp.Price, want)
			}
			if resp.Mantissa != decmath.Mantissa(want).String() || resp.Scale != decmath.Scale(want) {
				t.Errorf("parts = (%s, %d), want (%s, %d)",
					resp.Mantissa, resp.Scale, decmath.Mantissa(want), decmath.Scale(want))
			}
		})
	}
}

func TestPriceHandler_Intrinsic(t *testing.T) {
	rec := do(t, "POST", "/v1/price", `{"stock":"110","strike":"100","rate":"0.05","sigma":"0","maturity":"1"}`)
	resp := decodePrice(t, rec)
	if resp != (PriceResponse{Price: "10", Mantissa: "10", Scale: 0}) {
		t.Errorf("response = %+v", resp)
	}
}

func TestPriceHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
		wantErr    string
	}{
		{
			name:       "malformed json",
			body:       `{"stock":`,
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid request body",
		},
		{
			name:       "not a decimal",
			body:       `{"stock":"abc","strike":"105","rate":"0.05","sigma":"0.2","maturity":"1"}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    "invalid request body",
		},
		{
			name:       "unknown field",
			body:       `{"stock":"100","strik":"105","rate":"0.05","sigma":"0.2","maturity":"1"}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    `unknown field "strik"`,
		},
		{
			name:       "body too large",
			body:       `{"stock":"` + strings.Repeat("1", MaxBodyBytes) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantErr:    "request body too large",
		},
		{
			name:       "huge exponent",
			body:       `{"stock":"1e10000000","strike":"105","rate":"0.05","sigma":"0.2","maturity":"1"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "mantissa_overflow",
			wantErr:    "normalize(1e10000000)",
		},
		{
			name:       "missing field",
			body:       `{"stock":"100","strike":"105","rate":"0.05","sigma":"0.2"}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    `missing field "maturity"`,
		},
		{
			name:       "negative maturity",
			body:       `{"stock":"100","strike":"105","rate":"0.05","sigma":"0.2","maturity":"-1"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "negative_or_zero_domain",
			wantErr:    "sqrt of maturity",
		},
		{
			name:       "zero strike",
			body:       `{"stock":"100","strike":"0","rate":"0.05","sigma":"0.2","maturity":"1"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "division_by_zero",
		},
		{
			name:       "stock too large",
			body:       `{"stock":"1E+40","strike":"105","rate":"0.05","sigma":"0.2","maturity":"1"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "mantissa_overflow",
			wantErr:    "stock",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "POST", "/v1/price", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if !strings.Contains(resp.Error, tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestReferenceHandler(t *testing.T) {
	resp := decodePrice(t, do(t, "GET", "/v1/reference", ""))
	want := PriceResponse{Price: "8.021326891427987781148053217", Mantissa: "8021326891427987781148053217", Scale: 27}
	if resp != want {
		t.Errorf("reference = %+v, want %+v", resp, want)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := do(t, "GET", "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	if rec := do(t, "GET", "/v1/price", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/price status = %d, want 405", rec.Code)
	}
}
