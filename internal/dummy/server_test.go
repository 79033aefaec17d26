package dummy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleKnownMethodReturnsResult(t *testing.T) {
	srv := httptest.NewServer(handle(DefaultProfiles))
	defer srv.Close()

	req := rpcRequest{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "fast"}
	body, _ := json.Marshal(req)
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Result == nil && decoded.Error == nil {
		t.Fatal("response has neither result nor error")
	}
}

func TestHandleUnknownMethodUsesFallback(t *testing.T) {
	srv := httptest.NewServer(handle(DefaultProfiles))
	defer srv.Close()

	req := rpcRequest{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "totally_unknown_method"}
	body, _ := json.Marshal(req)
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (fallback profile should always answer)", resp.StatusCode)
	}
}
