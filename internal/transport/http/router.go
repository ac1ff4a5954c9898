package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpmw.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httpmw.Logging)

	// WS endpoint; identity arrives in the user_join event, not the URL
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/messages", func(rm chi.Router) {
		rm.Get("/recent", h.RecentMessages)

		rm.Group(func(pr chi.Router) {
			pr.Use(httpmw.AuthMiddleware)
			pr.Use(middlewareChi.Timeout(30 * time.Second))

			pr.Get("/conversation/{userA}/{userB}", h.Conversation)
			pr.Delete("/{id}", h.DeleteMessage)
		})
	})

	r.Route("/users", func(ru chi.Router) {
		ru.Get("/", h.ListUsers)
		ru.Get("/online", h.ListOnlineUsers)
		ru.Get("/{id}", h.GetUser)

		ru.Group(func(pr chi.Router) {
			pr.Use(httpmw.AuthMiddleware)
			pr.Use(middlewareChi.Timeout(30 * time.Second))

			pr.Put("/{id}", h.UpdateProfile)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
