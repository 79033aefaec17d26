package rpcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flood/internal/model"
)

func TestIssueOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	res := c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.Ok {
		t.Fatalf("Outcome = %v, want Ok (err: %v)", res.Outcome, res.Err)
	}
}

func TestIssueRpcError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	res := c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.ErrRpc {
		t.Fatalf("Outcome = %v, want ErrRpc", res.Outcome)
	}
}

func TestIssueHttpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	res := c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.ErrHttp {
		t.Fatalf("Outcome = %v, want ErrHttp", res.Outcome)
	}
}

func TestIssueDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	res := c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.ErrDecode {
		t.Fatalf("Outcome = %v, want ErrDecode", res.Outcome)
	}
}

func TestIssueTimeoutOnCtxCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := c.Issue(ctx, model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.ErrTimeout {
		t.Fatalf("Outcome = %v, want ErrTimeout", res.Outcome)
	}
}

// TestIssueTimeoutOnClientTimeout exercises the per-call --timeout path
// directly: the caller's ctx is never cancelled, so Issue must derive its
// own deadline from the Client's configured timeout rather than relying on
// ctx.Err() alone.
func TestIssueTimeoutOnClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, 10*time.Millisecond)
	res := c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	if res.Outcome != model.ErrTimeout {
		t.Fatalf("Outcome = %v, want ErrTimeout", res.Outcome)
	}
}

func TestIssueRoundRobinsEndpoints(t *testing.T) {
	hits := map[string]int{}
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits[name]++
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
		}
	}
	s1 := httptest.NewServer(handler("s1"))
	defer s1.Close()
	s2 := httptest.NewServer(handler("s2"))
	defer s2.Close()

	c := New([]string{s1.URL, s2.URL}, time.Second)
	for i := 0; i < 4; i++ {
		c.Issue(context.Background(), model.ConcreteCall{Method: "ping"})
	}
	if hits["s1"] != 2 || hits["s2"] != 2 {
		t.Errorf("hits = %+v, want 2 and 2", hits)
	}
}
