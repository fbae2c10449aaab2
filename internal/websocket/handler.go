package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades GET /ws and streams cart change messages to the
// connection until either side goes away. originPatterns follows
// coder/websocket semantics; with none, only same-origin browsers may connect.
func HandleWebSocket(hub *Hub, logger *slog.Logger, originPatterns ...string) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			// Accept has already written the HTTP error response.
			logger.Warn("websocket upgrade rejected", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("websocket subscriber joined", "remote", r.RemoteAddr)
		NewClient(hub, conn).Run(r.Context())
		logger.Debug("websocket subscriber left", "remote", r.RemoteAddr)
	}
}
