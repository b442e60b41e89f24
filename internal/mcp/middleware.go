package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionHeader carries the activity scope over the HTTP transport.
const SessionHeader = "X-Statusboard-Session"

type contextKey int

const sessionIDKey contextKey = iota

// getSessionID extracts the activity scope from context.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// sessionMiddleware resolves the activity scope from SessionHeader (HTTP),
// _meta.session_id (stdio), or falls back to defaultSession.
func sessionMiddleware(defaultSession string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get(SessionHeader)
			}

			// Notifications such as "initialized" carry nil params; GetMeta
			// panics on a typed nil.
			if sessionID == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if sid, ok := meta["session_id"].(string); ok {
								sessionID = sid
							}
						}
					}()
				}
			}

			if sessionID == "" {
				sessionID = defaultSession
			}
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)

			return next(ctx, method, req)
		}
	}
}
