package handler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aura-studio/dynamic"
	"github.com/aura-studio/lambda-local/invocation"
	"github.com/tidwall/gjson"
)

// TunnelScheme prefixes handler files that name a dynamic package, as in
// dynamic://orders/v1.
const TunnelScheme = "dynamic://"

// parseTunnelFile splits dynamic://<package>/<version>. The version is
// optional and falls back to the warehouse default.
func parseTunnelFile(file string) (pkg, version string, err error) {
	rest := strings.TrimPrefix(file, TunnelScheme)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("handler: invalid tunnel file %q", file)
	}
	pkg = parts[0]
	if len(parts) > 1 {
		version = parts[1]
	}
	if len(parts) > 2 {
		return "", "", fmt.Errorf("handler: invalid tunnel file %q", file)
	}
	return pkg, version, nil
}

// fromTunnel invokes route on the tunnel with the event JSON as request.
// A JSON response is passed through, anything else becomes a string result.
func fromTunnel(tunnel dynamic.Tunnel, route string) invocation.Handler {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return func(event any, c *invocation.Context, callback invocation.Callback) {
		req := ""
		if event != nil {
			b, err := json.Marshal(event)
			if err != nil {
				callback(fmt.Errorf("handler: marshal event: %w", err), nil)
				return
			}
			req = string(b)
		}

		rsp := tunnel.Invoke(route, req)
		switch {
		case rsp == "":
			callback(nil, nil)
		case gjson.Valid(rsp):
			callback(nil, json.RawMessage(rsp))
		default:
			callback(nil, rsp)
		}
	}
}
