package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/aura-studio/lambda-local/event"
	"github.com/aura-studio/lambda-local/harness"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/sjson"
)

const (
	HeaderFunctionError   = "X-Amz-Function-Error"
	HeaderExecutedVersion = "X-Amz-Executed-Version"
	HeaderLogType         = "X-Amz-Log-Type"
	HeaderLogResult       = "X-Amz-Log-Result"
	HeaderRequestID       = "X-Amzn-Requestid"
	HeaderInvocationType  = "X-Amz-Invocation-Type"
)

// maxLogResult is how much of the tail of the logs X-Amz-Log-Result carries.
const maxLogResult = 4096

// strayNotice replaces the tail logs of in-process handlers once one of them
// has outlived its invocation.
const strayNotice = "lambda-local: log capture is off since function %q outlived its invocation; restart the server to turn it back on\n"

func (e *Engine) InstallHandlers() {
	e.GET("/", e.OK)
	e.GET("/health-check", e.OK)
	e.GET("/meta", e.Meta)
	e.POST("/2015-03-31/functions/:name/invocations", e.Invoke)
	e.NoRoute(e.PageNotFound)
}

func (e *Engine) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
	c.Abort()
}

func (e *Engine) Meta(c *gin.Context) {
	names := make([]string, 0, len(e.Functions))
	for name := range e.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	extra, _ := sjson.Set(`{}`, "functions", names)
	c.Data(http.StatusOK, "application/json", []byte(e.Dynamic.Meta(extra)))
	c.Abort()
}

func (e *Engine) PageNotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 page not found")
	c.Abort()
}

// Invoke runs one invocation with the request body as event and answers the
// way the Invoke API does: status 200 with the function error in a header.
func (e *Engine) Invoke(c *gin.Context) {
	fn, ok := e.function(c.Param("name"))
	if !ok {
		apiError(c, http.StatusNotFound, "ResourceNotFoundException", "Function not found: "+c.Param("name"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apiError(c, http.StatusBadRequest, "InvalidRequestContentException", err.Error())
		return
	}
	ev, err := event.Parse(body, false)
	if err != nil {
		apiError(c, http.StatusBadRequest, "InvalidRequestContentException", err.Error())
		return
	}

	switch c.GetHeader(HeaderInvocationType) {
	case "DryRun":
		c.Status(http.StatusNoContent)
		c.Abort()
		return
	case "Event":
		go func() {
			if _, err := e.run(context.Background(), fn, ev, false); err != nil {
				e.Logger.Error("async invocation", "function", fn.Name, "err", err)
			}
		}()
		c.Status(http.StatusAccepted)
		c.Abort()
		return
	}

	tail := strings.EqualFold(c.GetHeader(HeaderLogType), "Tail")
	out, err := e.run(c.Request.Context(), fn, ev, tail)
	if err != nil {
		e.Logger.Error("load handler", "function", fn.Name, "err", err)
		apiError(c, http.StatusBadGateway, "ServiceException", err.Error())
		return
	}

	c.Header(HeaderExecutedVersion, "$LATEST")
	c.Header(HeaderRequestID, out.result.RequestID)
	if tail {
		c.Header(HeaderLogResult, tailLogs(out.logs))
	}
	if out.result.FunctionError || out.result.ExitCode != 0 {
		c.Header(HeaderFunctionError, "Unhandled")
	}
	c.Data(http.StatusOK, "application/json", bytes.TrimRight(out.payload, "\n"))
	c.Abort()
}

type invocationOutput struct {
	result  *harness.Result
	payload []byte
	logs    string
}

// run loads the handler of fn and runs one invocation. Runs are serialized.
func (e *Engine) run(ctx context.Context, fn *Function, ev any, tail bool) (*invocationOutput, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := harness.Settings{
		File:    fn.File,
		Timeout: fn.Timeout,
		Handler: fn.Handler,
	}
	inst, err := e.loader.Open(ctx, settings)
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	runner := harness.NewEngine(
		harness.WithSettings(settings),
		harness.WithFunctionName(fn.Name),
		harness.WithMemoryLimit(fn.MemoryLimitInMB),
		harness.WithRegion(e.Region),
		harness.WithAccountID(e.AccountID),
		harness.WithDebugMode(e.DebugMode),
		harness.WithStdout(&stdout),
		harness.WithLogger(e.Logger.WithPrefix("harness")),
	)

	out := &invocationOutput{}
	invoke := func() {
		out.result = runner.Run(ctx, inst.Handler, ev)
	}
	switch {
	case !tail:
		invoke()
	case !inst.InProcess():
		// writes are serialized by the process output
		var logs bytes.Buffer
		inst.SetOutput(&logs)
		invoke()
		inst.SetOutput(nil)
		out.logs = logs.String()
	case e.stray != "":
		out.logs = fmt.Sprintf(strayNotice, e.stray)
		invoke()
	default:
		out.logs, err = harness.Capture(nil, invoke)
		if err != nil {
			e.Logger.Error("capture logs", "function", fn.Name, "err", err)
		}
	}
	if out.result == nil {
		return nil, errors.New("server: invocation did not finish")
	}
	out.payload = stdout.Bytes()

	if inst.InProcess() && out.result.Abandoned && e.stray == "" {
		e.stray = fn.Name
		e.Logger.Warn("handler outlived its invocation, tail logs of in-process handlers are off", "function", fn.Name)
	}

	e.Logger.Debug("invoked",
		"function", fn.Name,
		"request_id", out.result.RequestID,
		"kind", out.result.Kind,
		"duration", out.result.Duration)
	return out, nil
}

// function resolves a function name against the configured functions.
func (e *Engine) function(name string) (*Function, bool) {
	if f, ok := e.Functions[name]; ok {
		return f, true
	}
	if e.DefaultFunction == nil {
		return nil, false
	}
	f := *e.DefaultFunction
	f.Name = name
	return &f, true
}

func apiError(c *gin.Context, status int, typ string, message string) {
	c.Header("X-Amzn-Errortype", typ)
	c.JSON(status, gin.H{"Type": typ, "Message": message})
	c.Abort()
}

func tailLogs(logs string) string {
	if len(logs) > maxLogResult {
		logs = logs[len(logs)-maxLogResult:]
	}
	return base64.StdEncoding.EncodeToString([]byte(logs))
}
