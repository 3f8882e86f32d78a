/*
This file contains the HandleWebSocket function, responsible for rate
limiting, upgrading the HTTP connection to WebSocket, and starting the client
lifecycle. Connections are admitted unauthenticated; identity is bound later
through an auth event on the socket.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/limiter"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/randx"
	"acaragraph/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		client := chat.NewClient(deps.Hub, deps.Pipeline, deps.Store, conn, connID)

		deps.Hub.Attach(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", connID)

		client.ReadPump()
	}
}
