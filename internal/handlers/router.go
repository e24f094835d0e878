package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/buildinfo"
	"github.com/xelth-com/ongoingwms/internal/config"
	"github.com/xelth-com/ongoingwms/internal/middleware"
	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/services/wmssync"
	"github.com/xelth-com/ongoingwms/internal/store"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// Syncer is the part of wmssync.Service the API triggers.
type Syncer interface {
	PushPicking(ctx context.Context, pickingID int64) (wms.Result, error)
	SyncInOrder(ctx context.Context, pickingID int64) (wms.Result, error)
	RefreshTracking(ctx context.Context, pickingID int64) (wms.Result, error)
	RefreshSerials(ctx context.Context, pickingID int64) (wms.Result, error)
	SyncSaleArticles(ctx context.Context, saleOrderID int64) (*wmssync.Report, error)
	SyncPurchaseArticles(ctx context.Context, purchaseID int64) (*wmssync.Report, error)
	Run(ctx context.Context, workflow string, companyID int64) (*models.SyncHistory, error)
}

// Records is the read/write access the API needs to the local store.
type Records interface {
	Company(ctx context.Context, id int64) (*models.Company, error)
	SaveCompany(ctx context.Context, c *models.Company) error
	SyncHistory(ctx context.Context, f store.HistoryFilter) ([]models.SyncHistory, error)
	Notes(ctx context.Context, pickingID int64) ([]models.PickingNote, error)
	RequestLogs(ctx context.Context, companyID int64, limit int) ([]models.WMSRequestLog, error)
}

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	records Records
	sync    Syncer
	admin   config.AdminConfig
	secret  string
	log     *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, records Records, syncer Syncer, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		Router:  mux.NewRouter(),
		records: records,
		sync:    syncer,
		admin:   cfg.Admin,
		secret:  cfg.JWTSecret,
		log:     logger.Named("http"),
	}
	r.Use(middleware.RequestID(r.log))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/companies/{id:[0-9]+}/wms", r.getCompanyWMS).Methods("GET")
	api.HandleFunc("/companies/{id:[0-9]+}/wms", r.updateCompanyWMS).Methods("PUT")
	api.HandleFunc("/companies/{id:[0-9]+}/sync/{workflow}", r.runWorkflow).Methods("POST")
	api.HandleFunc("/companies/{id:[0-9]+}/requests", r.listRequestLogs).Methods("GET")

	api.HandleFunc("/pickings/{id:[0-9]+}/push", r.pickingAction(syncer.PushPicking)).Methods("POST")
	api.HandleFunc("/pickings/{id:[0-9]+}/inorder", r.pickingAction(syncer.SyncInOrder)).Methods("POST")
	api.HandleFunc("/pickings/{id:[0-9]+}/tracking", r.pickingAction(syncer.RefreshTracking)).Methods("POST")
	api.HandleFunc("/pickings/{id:[0-9]+}/serials", r.pickingAction(syncer.RefreshSerials)).Methods("POST")
	api.HandleFunc("/pickings/{id:[0-9]+}/notes", r.listNotes).Methods("GET")

	api.HandleFunc("/sale-orders/{id:[0-9]+}/articles", r.articleAction(syncer.SyncSaleArticles)).Methods("POST")
	api.HandleFunc("/purchase-orders/{id:[0-9]+}/articles", r.articleAction(syncer.SyncPurchaseArticles)).Methods("POST")

	api.HandleFunc("/sync/history", r.listHistory).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	info := buildinfo.Info()
	info["status"] = "ok"
	respondJSON(w, http.StatusOK, info)
}

// pathID reads the numeric {id} route variable.
func pathID(req *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, wmssync.ErrUnknownWorkflow):
		return http.StatusNotFound
	case wms.IsConfiguration(err):
		return http.StatusPreconditionFailed
	case errors.Is(err, wms.ErrAlreadyShipped),
		errors.Is(err, wms.ErrReturnExists),
		errors.Is(err, wms.ErrDuplicateReturn):
		return http.StatusConflict
	case wms.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondServiceError logs server-side failures and answers with the mapped status.
func (r *Router) respondServiceError(w http.ResponseWriter, req *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed",
			zap.String("request_id", middleware.RequestIDFrom(req.Context())),
			zap.String("path", req.URL.Path),
			zap.Error(err))
	}
	respondError(w, status, err.Error())
}
