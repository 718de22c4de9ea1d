// Package server wires the stores, services, and handlers into one HTTP
// router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veydran/directorate/internal/handler"
	"github.com/veydran/directorate/internal/middleware"
	"github.com/veydran/directorate/internal/push"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/ticket"
	ws "github.com/veydran/directorate/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	userH         *handler.UserHandler
	ticketH       *handler.TicketHandler
	transactionH  *handler.TransactionHandler
	notificationH *handler.NotificationHandler
	pushH         *handler.PushHandler
	logger        *slog.Logger
}

func New(db *sql.DB, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	ticketStore := store.NewTicketStore(db)
	ledgerStore := store.NewLedgerStore(db)
	notificationStore := store.NewNotificationStore(db)
	pushStore := store.NewPushStore(db)

	ticketSvc := ticket.NewService(ticketStore, userStore, ledgerStore, hub,
		logger.With("component", "ticket"))

	// Push delivery stays nil without VAPID keys; the notification handler
	// then broadcasts over the hub only.
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(pushCfg, pushStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	return &Server{
		db:            db,
		hub:           hub,
		userH:         handler.NewUserHandler(userStore, ledgerStore, hub, logger.With("component", "user")),
		ticketH:       handler.NewTicketHandler(ticketStore, userStore, ticketSvc, logger.With("component", "ticket_handler")),
		transactionH:  handler.NewTransactionHandler(ledgerStore),
		notificationH: handler.NewNotificationHandler(notificationStore, hub, pushSvc, logger.With("component", "notification")),
		pushH:         pushH,
		logger:        logger,
	}
}

// Hub returns the broadcast hub so main can run its dispatcher.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("PATCH /api/users/{id}/adjust", s.userH.Adjust)

	mux.HandleFunc("POST /api/tickets", s.ticketH.Create)
	mux.HandleFunc("GET /api/tickets/{id}", s.ticketH.Get)
	mux.HandleFunc("PATCH /api/tickets/{id}/submit", s.ticketH.Submit)
	mux.HandleFunc("PATCH /api/tickets/{id}/approve", s.ticketH.Approve)
	mux.HandleFunc("POST /api/tickets/{id}/comment", s.ticketH.Comment)

	mux.HandleFunc("GET /api/transactions", s.transactionH.List)

	mux.HandleFunc("POST /api/notifications", s.notificationH.Create)
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("PATCH /api/notifications/{id}/read", s.notificationH.MarkRead)

	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDPublicKey)
	}

	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	chain := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	chain = middleware.RequestID(chain)
	return middleware.CORS(chain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
