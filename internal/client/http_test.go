package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omahs/claims-hatter/internal/model"
)

func TestCreateGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/gates" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in CreateGateRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in.Hat != "1.2" || in.CreatedBy != "alice" {
			t.Errorf("request = %+v", in)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.Gate{
			ID: "gate-abc123", Hat: in.Hat, Factory: "factory-svc",
			Self: "hatter:gate-abc123", CreatedAt: time.Now(),
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	gate, err := c.CreateGate(context.Background(), &CreateGateRequest{Hat: "1.2", CreatedBy: "alice"})
	if err != nil {
		t.Fatalf("CreateGate: %v", err)
	}
	if gate.ID != "gate-abc123" || gate.Hat != "1.2" {
		t.Errorf("gate = %+v", gate)
	}
}

func TestListGatesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("enabled") != "true" || q.Get("admin_of") != "1" || q.Get("limit") != "5" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListGatesResponse{Gates: []*model.Gate{{ID: "gate-a"}}, Total: 1})
	}))
	defer srv.Close()

	enabled := true
	c := NewHTTPClient(srv.URL, "")
	resp, err := c.ListGates(context.Background(), &ListGatesRequest{AdminOf: "1", Enabled: &enabled, Limit: 5})
	if err != nil {
		t.Fatalf("ListGates: %v", err)
	}
	if resp.Total != 1 || resp.Gates[0].ID != "gate-a" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClaimSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("authorization = %q", got)
		}
		if r.URL.Path != "/v1/gates/gate-a/claim" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["caller"] != "claimer" {
			t.Errorf("body = %v", in)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "claimed"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "s3cret")
	if err := c.Claim(context.Background(), "gate-a", "claimer"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
}

func TestSetClaimForPickRoute(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"claim_for_enabled": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	if err := c.SetClaimFor(context.Background(), "gate-a", "org-admin", true); err != nil {
		t.Fatal(err)
	}
	if err := c.SetClaimFor(context.Background(), "gate-a", "org-admin", false); err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != "/v1/gates/gate-a/enable" || paths[1] != "/v1/gates/gate-a/disable" {
		t.Errorf("paths = %v", paths)
	}
}

func TestAPIErrorCarriesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "claiming-for is not enabled",
			"code":  "not_claimable_for",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	err := c.ClaimFor(context.Background(), "gate-a", "helper", "wearer")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Code != "not_claimable_for" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestWearerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/gates/gate-a/wearers/bob/status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(WearerStatusResponse{Wearer: "bob", Eligible: true, Standing: true, Explicit: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	status, err := c.WearerStatus(context.Background(), "gate-a", "bob")
	if err != nil {
		t.Fatalf("WearerStatus: %v", err)
	}
	if !status.Explicit {
		t.Errorf("status = %+v", status)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	status, err := c.Health(context.Background())
	if err != nil || status != "ok" {
		t.Fatalf("Health = %q, %v", status, err)
	}
}
