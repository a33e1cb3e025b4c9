package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"alumnilink/internal/app/chat"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/limiter"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/resp"
)

// HandleWebSocket upgrades a signed-in member's request to a realtime
// connection. The session token is read from the "token" query parameter.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		currentUser, ok := deps.Directory.LookupUser(r.Context(), identity.ID)
		if !ok {
			logx.Info("WebSocket connection rejected: not a directory member.", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, deps.Messaging, conn, currentUser, *identity, deps.Config.JWTSecret)

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", currentUser.ID)

		deps.Hub.Register(client)

		client.ReadPump()
	}
}
