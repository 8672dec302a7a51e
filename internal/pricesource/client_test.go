package pricesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fuelmeter/internal/domain"
)

func TestClientFetchPrices_ValidPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/prices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"iocl": {"petrol": 96.72, "diesel": 89.62},
				"igl": {"cng": 76.59}
			},
			"last_updated": "2025-06-01T12:00:00Z"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	snapshot, err := client.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.Provenance != domain.ProvenanceFetched {
		t.Errorf("expected fetched provenance, got %s", snapshot.Provenance)
	}
	if got := snapshot.Prices["iocl"][domain.FuelPetrol]; got != 96.72 {
		t.Errorf("expected iocl petrol 96.72, got %v", got)
	}
	if got := snapshot.Prices["igl"][domain.FuelCNG]; got != 76.59 {
		t.Errorf("expected igl cng 76.59, got %v", got)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !snapshot.UpdatedAt.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, snapshot.UpdatedAt)
	}
}

func TestClientFetchPrices_UnknownFuelKeysDropped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": {
				"iocl": {"petrol": 96.72, "kerosene": 55.10},
				"acme": {"jetfuel": 120.00}
			},
			"last_updated": "2025-06-01T12:00:00Z"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	snapshot, err := client.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := snapshot.Prices["acme"]; ok {
		t.Error("expected supplier with only unknown fuels to be dropped")
	}
	if len(snapshot.Prices["iocl"]) != 1 {
		t.Errorf("expected only petrol kept for iocl, got %v", snapshot.Prices["iocl"])
	}
}

func TestClientFetchPrices_MissingTimestampTolerated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"iocl": {"petrol": 96.72}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	snapshot, err := client.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snapshot.UpdatedAt.IsZero() {
		t.Errorf("expected zero timestamp, got %v", snapshot.UpdatedAt)
	}
}

func TestClientFetchPrices_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			payload: `{"error": "boom"}`,
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			payload: `{"success": true, "data": {`,
		},
		{
			name:    "source reported failure",
			status:  http.StatusOK,
			payload: `{"success": false, "data": {"iocl": {"petrol": 96.72}}}`,
		},
		{
			name:    "empty data",
			status:  http.StatusOK,
			payload: `{"success": true, "data": {}}`,
		},
		{
			name:    "negative price",
			status:  http.StatusOK,
			payload: `{"success": true, "data": {"iocl": {"petrol": -1.5}}}`,
		},
		{
			name:    "zero price",
			status:  http.StatusOK,
			payload: `{"success": true, "data": {"iocl": {"petrol": 0}}}`,
		},
		{
			name:    "no recognizable fuels",
			status:  http.StatusOK,
			payload: `{"success": true, "data": {"iocl": {"kerosene": 55.10}}}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second, nil)
			if _, err := client.FetchPrices(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestClientFetchPrices_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, nil)
	if _, err := client.FetchPrices(context.Background()); err == nil {
		t.Error("expected an error when the source is unreachable")
	}
}
