package appsheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khovp/giaokho/internal/shared"
)

func TestFetchAllSendsFindAction(t *testing.T) {
	var gotBody findRequest
	var gotKey, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("ApplicationAccessKey")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"order_kd":"KD-1","sll":12},{"order_kd":"KD-2","sll":"7"}]`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "secret", "giao_kho_vp", srv.Client())
	rows, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if gotPath != "/tables/giao_kho_vp/Action" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("unexpected access key %q", gotKey)
	}
	if gotBody.Action != "Find" || gotBody.Selector != "Filter(giao_kho_vp, true)" {
		t.Fatalf("unexpected request body %+v", gotBody)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].String("order_kd") != "KD-1" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].String("sll") != "12" || rows[1].String("sll") != "7" {
		t.Fatal("numeric and string cells must both coerce")
	}
}

func TestFetchAllStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such app", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "secret", "giao_kho_vp", srv.Client())
	_, err := client.FetchAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, shared.ErrDataFormat) {
		t.Fatal("status errors are not format errors")
	}
	if !errors.Is(err, shared.ErrFeedUnavailable) {
		t.Fatalf("expected feed unavailable, got %v", err)
	}
}

func TestFetchAllNonArrayPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"unexpected shape"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "secret", "giao_kho_vp", srv.Client())
	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, shared.ErrDataFormat) {
		t.Fatalf("expected data format error, got %v", err)
	}
}

func TestRowString(t *testing.T) {
	row := Row{"s": "text", "n": 4.0, "f": 2.5, "b": true, "nil": nil}
	if row.String("s") != "text" || row.String("n") != "4" || row.String("f") != "2.5" {
		t.Fatalf("unexpected coercions: %q %q %q", row.String("s"), row.String("n"), row.String("f"))
	}
	if row.String("b") != "true" || row.String("nil") != "" || row.String("absent") != "" {
		t.Fatal("bool, nil and absent cells must coerce predictably")
	}
}
