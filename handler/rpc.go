package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/charmbracelet/log"
)

const (
	serverPortEnv = "_LAMBDA_SERVER_PORT"
	runtimeAPIEnv = "AWS_LAMBDA_RUNTIME_API"
)

// RemoteError is an error reported by a handler binary.
type RemoteError struct {
	Response *messages.InvokeResponse_Error
}

func (e *RemoteError) Error() string { return e.Response.Message }

func (e *RemoteError) ErrorType() string { return e.Response.Type }

func (e *RemoteError) StackTrace() string {
	frames := make([]string, 0, len(e.Response.StackTrace))
	for _, f := range e.Response.StackTrace {
		if f == nil {
			continue
		}
		frames = append(frames, fmt.Sprintf("%s\n\t%s:%d", f.Label, f.Path, f.Line))
	}
	return strings.Join(frames, "\n")
}

// process is a running handler binary serving the aws-lambda-go RPC
// protocol.
type process struct {
	path   string
	cmd    *exec.Cmd
	client *rpc.Client
	exited chan struct{}

	output *output

	closeOnce sync.Once
}

// startBinary runs the binary at path with a free _LAMBDA_SERVER_PORT and
// waits until it answers Function.Ping.
func startBinary(ctx context.Context, path string, env map[string]string, startTimeout time.Duration, logger *log.Logger) (*process, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("handler: allocate port: %w", err)
	}

	p := &process{
		path:   path,
		exited: make(chan struct{}),
		output: &output{},
	}

	cmd := exec.Command(path)
	cmd.Env = binaryEnv(os.Environ(), env, port)
	cmd.Stdout = p.output.stream(os.Stdout)
	cmd.Stderr = p.output.stream(os.Stderr)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("handler: start %s: %w", path, err)
	}
	p.cmd = cmd
	go func() {
		err := cmd.Wait()
		logger.Debug("handler binary exited", "path", path, "err", err)
		close(p.exited)
	}()

	addr := net.JoinHostPort("localhost", strconv.Itoa(port))
	p.client, err = dialRPC(ctx, addr, startTimeout, p.exited)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("handler: connect %s: %w", path, err)
	}
	logger.Debug("handler binary started", "path", path, "addr", addr, "pid", cmd.Process.Pid)
	return p, nil
}

func (p *process) Close() error {
	p.closeOnce.Do(func() {
		if p.client != nil {
			p.client.Close()
		}
		if p.cmd != nil && p.cmd.Process != nil {
			select {
			case <-p.exited:
			default:
				p.cmd.Process.Kill()
				<-p.exited
			}
		}
	})
	return nil
}

// dialRPC retries until the server answers a ping, the process exits or the
// timeout passes.
func dialRPC(ctx context.Context, addr string, timeout time.Duration, exited <-chan struct{}) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		client, err := rpc.Dial("tcp", addr)
		if err == nil {
			if err = client.Call("Function.Ping", &messages.PingRequest{}, &messages.PingResponse{}); err == nil {
				return client, nil
			}
			client.Close()
		}
		lastErr = err

		select {
		case <-ticker.C:
		case <-exited:
			return nil, errors.New("process exited before accepting connections")
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ctx.Err(), lastErr)
		}
	}
}

// fromRPC invokes the remote handler through Function.Invoke. When the
// deadline passes before the reply, expired is called and the handler
// returns without a completion; the harness timer owns that outcome.
func fromRPC(client *rpc.Client, expired func()) invocation.Handler {
	return func(event any, c *invocation.Context, callback invocation.Callback) {
		payload, err := json.Marshal(event)
		if err != nil {
			callback(fmt.Errorf("handler: marshal event: %w", err), nil)
			return
		}

		deadline := c.Deadline()
		req := &messages.InvokeRequest{
			Payload:            payload,
			RequestId:          c.AwsRequestID,
			InvokedFunctionArn: c.InvokedFunctionArn,
			Deadline: messages.InvokeRequest_Timestamp{
				Seconds: deadline.Unix(),
				Nanos:   int64(deadline.Nanosecond()),
			},
		}

		var rsp messages.InvokeResponse
		pending := client.Go("Function.Invoke", req, &rsp, make(chan *rpc.Call, 1))

		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()

		select {
		case <-pending.Done:
		case <-timer.C:
			if expired != nil {
				expired()
			}
			return
		}

		if pending.Error != nil {
			callback(fmt.Errorf("handler: invoke: %w", pending.Error), nil)
			return
		}
		if rsp.Error != nil {
			callback(&RemoteError{Response: rsp.Error}, nil)
			return
		}
		callback(nil, rawResult(rsp.Payload))
	}
}

// binaryEnv drops the runtime API address so the binary serves RPC instead of
// polling a runtime endpoint.
func binaryEnv(base []string, env map[string]string, port int) []string {
	out := make([]string, 0, len(base)+len(env)+1)
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if k == runtimeAPIEnv || k == serverPortEnv {
			continue
		}
		if _, ok := env[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return append(out, serverPortEnv+"="+strconv.Itoa(port))
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// output routes both streams of a handler binary to the writer of the
// current invocation, or to each stream's fallback between invocations.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *output) set(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = w
}

func (o *output) stream(fallback io.Writer) io.Writer {
	return &stream{output: o, fallback: fallback}
}

type stream struct {
	output   *output
	fallback io.Writer
}

func (s *stream) Write(p []byte) (int, error) {
	s.output.mu.Lock()
	defer s.output.mu.Unlock()
	if s.output.w != nil {
		return s.output.w.Write(p)
	}
	return s.fallback.Write(p)
}
