package server_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aura-studio/lambda-local/handler"
	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aura-studio/lambda-local/server"
	"github.com/charmbracelet/log"
)

func init() {
	handler.Register("server-echo", func(event any, c *invocation.Context, cb invocation.Callback) {
		cb(nil, map[string]any{"event": event, "function": c.FunctionName})
	})
	handler.Register("server-fail", func(event any, c *invocation.Context, cb invocation.Callback) {
		c.Fail("boom")
	})
	handler.Register("server-slow", func(event any, c *invocation.Context, cb invocation.Callback) {})
	handler.Register("server-print", func(event any, c *invocation.Context, cb invocation.Callback) {
		fmt.Println("hello from the handler")
		c.Succeed("printed")
	})
}

func newTestEngine(t *testing.T, opts ...server.ServeOption) *server.Engine {
	t.Helper()
	base := []server.ServeOption{
		server.WithLogger(log.New(io.Discard)),
		server.WithFunction(server.Function{Name: "echo", File: "registry:server-echo"}),
		server.WithFunction(server.Function{Name: "fail", File: "registry:server-fail"}),
		server.WithFunction(server.Function{Name: "slow", File: "registry:server-slow", Timeout: 100 * time.Millisecond}),
		server.WithFunction(server.Function{Name: "print", File: "registry:server-print"}),
	}
	e := server.NewEngine(append(base, opts...)...)
	t.Cleanup(func() { e.Close() })
	return e
}

func invoke(e *server.Engine, name string, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/2015-03-31/functions/"+name+"/invocations", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestInvokeSuccess(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "echo", `{"name":"world"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get(server.HeaderFunctionError) != "" {
		t.Errorf("unexpected function error header")
	}
	if w.Header().Get(server.HeaderExecutedVersion) != "$LATEST" {
		t.Errorf("executed version = %q", w.Header().Get(server.HeaderExecutedVersion))
	}
	if w.Header().Get(server.HeaderRequestID) == "" {
		t.Error("request id header missing")
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("body %q is not JSON: %v", w.Body.String(), err)
	}
	if got["function"] != "echo" {
		t.Errorf("function = %v", got["function"])
	}
	if ev, _ := got["event"].(map[string]any); ev["name"] != "world" {
		t.Errorf("event = %v", got["event"])
	}
}

func TestInvokeFailure(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "fail", ``, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(server.HeaderFunctionError) != "Unhandled" {
		t.Errorf("function error = %q, want Unhandled", w.Header().Get(server.HeaderFunctionError))
	}
	if w.Body.String() != "boom" {
		t.Errorf("body = %q, want boom", w.Body.String())
	}
}

func TestInvokeTimeout(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "slow", `{}`, nil)

	if w.Header().Get(server.HeaderFunctionError) != "Unhandled" {
		t.Errorf("function error = %q, want Unhandled", w.Header().Get(server.HeaderFunctionError))
	}
	if !strings.Contains(w.Body.String(), "100") {
		t.Errorf("body = %q, want the timeout in it", w.Body.String())
	}
}

func TestInvokeTailLogs(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "print", `{}`, map[string]string{server.HeaderLogType: "Tail"})

	logs, err := base64.StdEncoding.DecodeString(w.Header().Get(server.HeaderLogResult))
	if err != nil {
		t.Fatalf("log result is not base64: %v", err)
	}
	if !strings.Contains(string(logs), "hello from the handler") {
		t.Errorf("logs = %q", logs)
	}
	if w.Body.String() != `"printed"` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestInvokeTailAfterStrayHandler(t *testing.T) {
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	handler.Register("server-chatty", func(event any, c *invocation.Context, cb invocation.Callback) {
		go func() {
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					fmt.Println("chatty after its deadline")
				}
			}
		}()
	})

	e := newTestEngine(t, server.WithFunction(server.Function{
		Name:    "chatty",
		File:    "registry:server-chatty",
		Timeout: 50 * time.Millisecond,
	}))

	w := invoke(e, "chatty", `{}`, nil)
	if w.Header().Get(server.HeaderFunctionError) != "Unhandled" {
		t.Fatalf("chatty should time out, body = %q", w.Body.String())
	}

	w = invoke(e, "print", `{}`, map[string]string{server.HeaderLogType: "Tail"})
	logs, err := base64.StdEncoding.DecodeString(w.Header().Get(server.HeaderLogResult))
	if err != nil {
		t.Fatalf("log result is not base64: %v", err)
	}
	if strings.Contains(string(logs), "chatty after its deadline") {
		t.Errorf("logs of print contain output of chatty: %q", logs)
	}
	if !strings.Contains(string(logs), `"chatty" outlived its invocation`) {
		t.Errorf("logs = %q, want the capture notice", logs)
	}
	if w.Body.String() != `"printed"` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestInvokeUnknownFunction(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "missing", `{}`, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ResourceNotFoundException") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInvokeDefaultFunction(t *testing.T) {
	e := newTestEngine(t, server.WithDefaultFunction(server.Function{File: "registry:server-echo"}))
	w := invoke(e, "anything", `1`, nil)

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("body %q is not JSON: %v", w.Body.String(), err)
	}
	if got["function"] != "anything" || got["event"] != float64(1) {
		t.Errorf("body = %v", got)
	}
}

func TestInvokeInvalidBody(t *testing.T) {
	e := newTestEngine(t)
	w := invoke(e, "echo", `{"broken":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestInvokeLoadError(t *testing.T) {
	e := newTestEngine(t, server.WithFunction(server.Function{Name: "ghost", File: "registry:not-there"}))
	w := invoke(e, "ghost", `{}`, nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestHealthCheckAndMeta(t *testing.T) {
	e := newTestEngine(t)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health-check", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("health-check = %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta", nil))
	var meta map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("meta %q is not JSON: %v", w.Body.String(), err)
	}
	fns, _ := meta["functions"].([]any)
	if len(fns) != 4 || fns[0] != "echo" {
		t.Errorf("functions = %v", meta["functions"])
	}

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", w.Code)
	}
}

func TestServeConfig(t *testing.T) {
	yamlConfig := `
server:
  address: 127.0.0.1:4000
  debug: false
account:
  region: eu-west-1
  id: "111122223333"
functions:
  - name: orders
    file: registry:server-echo
    handler: handler
    timeout: 7
    memory: 256
  - name: ""
    file: ignored
dynamic:
  namespace: from-server
`
	p := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(p, []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	e := server.NewEngine(server.WithLogger(log.New(io.Discard)), server.WithServeConfigFile(p))
	defer e.Close()

	if e.Address != "127.0.0.1:4000" || e.Region != "eu-west-1" || e.AccountID != "111122223333" {
		t.Errorf("options = %s %s %s", e.Address, e.Region, e.AccountID)
	}
	fn, ok := e.Functions["orders"]
	if !ok || len(e.Functions) != 1 {
		t.Fatalf("Functions = %v", e.Functions)
	}
	if fn.Timeout != 7*time.Second || fn.MemoryLimitInMB != 256 || fn.File != "registry:server-echo" {
		t.Errorf("orders = %+v", fn)
	}
	if e.Dynamic.Namespace != "from-server" {
		t.Errorf("dynamic namespace = %q", e.Dynamic.Namespace)
	}

	w := invoke(e, "orders", `{}`, nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestWithConfigPanicsOnInvalidYAML(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	server.NewOptions(server.WithConfig([]byte("server: [")))
}

func TestInvocationTypes(t *testing.T) {
	e := newTestEngine(t)

	w := invoke(e, "echo", `{}`, map[string]string{server.HeaderInvocationType: "DryRun"})
	if w.Code != http.StatusNoContent {
		t.Errorf("DryRun status = %d, want 204", w.Code)
	}

	w = invoke(e, "echo", `{}`, map[string]string{server.HeaderInvocationType: "Event"})
	if w.Code != http.StatusAccepted {
		t.Errorf("Event status = %d, want 202", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Event body = %q, want empty", w.Body.String())
	}
}
