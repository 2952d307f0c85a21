package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/middleware"
	"github.com/Dosada05/chess-league/services"
	"github.com/gorilla/websocket"
)

const clientSendBuffer = 256

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler accepts connections from any origin when allowedOrigins
// is empty.
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowed) == 0 || origin == "" {
					return true
				}
				_, exact := allowed[origin]
				_, wildcard := allowed["*"]
				return exact || wildcard
			},
		},
	}
}

// ServeWs подписывает клиента на события турнира: организованные раунды,
// созданные и завершённые партии.
// Клиент подключается к /ws/tournaments/{tournamentID}. Браузер не может
// передать заголовок Authorization, поэтому bearer-токен принимается в ?token=.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFromContext(r.Context())

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.GetTournamentByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		logger.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, clientSendBuffer),
		Room: brackets.TournamentRoom(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
