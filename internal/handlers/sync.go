package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/services/wmssync"
	"github.com/xelth-com/ongoingwms/internal/store"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// ResultResponse is the JSON form of a gateway result.
type ResultResponse struct {
	Operation             string `json:"operation"`
	Success               bool   `json:"success"`
	Message               string `json:"message,omitempty"`
	Error                 string `json:"error,omitempty"`
	Failure               string `json:"failure,omitempty"`
	GoodsOwnerOrderNumber string `json:"goodsOwnerOrderNumber,omitempty"`
	OrderID               int64  `json:"orderId,omitempty"`
	InOrderID             int64  `json:"inOrderId,omitempty"`
}

func resultResponse(res wms.Result) ResultResponse {
	out := ResultResponse{
		Operation:             res.Operation,
		Success:               res.Success,
		Message:               res.Message,
		Error:                 res.ErrorMessage,
		GoodsOwnerOrderNumber: res.GoodsOwnerOrderNumber,
		OrderID:               res.IDs.OrderID,
		InOrderID:             res.IDs.InOrderID,
	}
	if res.Failure != wms.FailureNone {
		out.Failure = res.Failure.String()
	}
	return out
}

// pickingAction runs one interactive single-picking call. A result the WMS
// did not accept is answered with 502.
func (r *Router) pickingAction(fn func(ctx context.Context, pickingID int64) (wms.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := pathID(req)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid picking id")
			return
		}
		res, err := fn(req.Context(), id)
		if err != nil {
			r.respondServiceError(w, req, err)
			return
		}
		status := http.StatusOK
		if !res.Success {
			status = http.StatusBadGateway
			r.log.Warn("wms rejected request",
				zap.Int64("picking", id),
				zap.String("operation", res.Operation),
				zap.String("error", res.ErrorMessage))
		}
		respondJSON(w, status, resultResponse(res))
	}
}

// articleAction pushes the articles of one sale or purchase order.
func (r *Router) articleAction(fn func(ctx context.Context, orderID int64) (*wmssync.Report, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, err := pathID(req)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid order id")
			return
		}
		report, err := fn(req.Context(), id)
		if err != nil {
			r.respondServiceError(w, req, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

// runWorkflow runs one scheduled workflow for a company right away.
func (r *Router) runWorkflow(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	history, err := r.sync.Run(req.Context(), mux.Vars(req)["workflow"], id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (r *Router) listHistory(w http.ResponseWriter, req *http.Request) {
	f := store.HistoryFilter{
		CompanyID: int64(queryInt(req, "company", 0)),
		Workflow:  req.URL.Query().Get("workflow"),
		Limit:     queryInt(req, "limit", 50),
	}
	rows, err := r.records.SyncHistory(req.Context(), f)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(rows),
		"history": rows,
	})
}

func (r *Router) listNotes(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid picking id")
		return
	}
	notes, err := r.records.Notes(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(notes),
		"notes": notes,
	})
}

// queryInt reads a non-negative integer query parameter.
func queryInt(req *http.Request, name string, def int) int {
	v, err := strconv.Atoi(req.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
