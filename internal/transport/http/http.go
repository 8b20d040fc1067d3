package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/ordermanager/oms/internal/dal/interfaces/ideadletterrepo"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/services/ordersvc"
	batchupdateorders "github.com/ordermanager/oms/internal/transport/http/batch_update_orders"
	cancelorder "github.com/ordermanager/oms/internal/transport/http/cancel_order"
	createorder "github.com/ordermanager/oms/internal/transport/http/create_order"
	deleteorder "github.com/ordermanager/oms/internal/transport/http/delete_order"
	getorder "github.com/ordermanager/oms/internal/transport/http/get_order"
	listdeadletters "github.com/ordermanager/oms/internal/transport/http/list_dead_letters"
	listorders "github.com/ordermanager/oms/internal/transport/http/list_orders"
	paymentwebhook "github.com/ordermanager/oms/internal/transport/http/payment_webhook"
	updateorder "github.com/ordermanager/oms/internal/transport/http/update_order"
	updateorderstatus "github.com/ordermanager/oms/internal/transport/http/update_order_status"
	"github.com/ordermanager/oms/pkg/http/middleware/trace"
	"github.com/ordermanager/oms/pkg/logger"
)

type service interface {
	Create(ctx context.Context, cmd ordersvc.CreateOrderCommand) (uuid.UUID, error)
	Update(ctx context.Context, cmd ordersvc.UpdateOrderCommand) (*order.Order, error)
	BatchUpdate(ctx context.Context, cmds []ordersvc.UpdateOrderCommand) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) (*order.PagedOrders, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status order.PaymentStatus) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	service     service
	deadLetters ideadletterrepo.IDeadLetterRepository
}

func NewHTTPTransport(service service, deadLetters ideadletterrepo.IDeadLetterRepository) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:      server,
		router:      router,
		service:     service,
		deadLetters: deadLetters,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Put("/", h.batchUpdateOrders)
			r.Get("/{id}", h.getOrder)
			r.Put("/{id}", h.updateOrder)
			r.Patch("/{id}/status", h.updateOrderStatus)
			r.Post("/{id}/cancel", h.cancelOrder)
			r.Delete("/{id}", h.deleteOrder)
		})
		r.Post("/payments/webhook", h.paymentWebhook)
		r.Get("/dead-letters", h.listDeadLetters)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateOrder(w, r, chi.URLParam(r, "id"), h.service)
}

func (h *HTTPTransport) batchUpdateOrders(w http.ResponseWriter, r *http.Request) {
	batchupdateorders.BatchUpdateOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, chi.URLParam(r, "id"), h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updateorderstatus.UpdateOrderStatus(w, r, chi.URLParam(r, "id"), h.service)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, chi.URLParam(r, "id"), h.service)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, chi.URLParam(r, "id"), h.service)
}

func (h *HTTPTransport) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	paymentwebhook.PaymentWebhook(w, r, h.service)
}

func (h *HTTPTransport) listDeadLetters(w http.ResponseWriter, r *http.Request) {
	listdeadletters.ListDeadLetters(w, r, h.deadLetters)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
