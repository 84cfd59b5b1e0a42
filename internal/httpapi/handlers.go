package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roach88/stockroom/internal/domain"
)

type updatePositionRequest struct {
	Quantity *int `json:"quantity"`
}

type moveRequest struct {
	PositionID  string `json:"positionID"`
	SrcOrderID  string `json:"srcOrderID"`
	DestOrderID string `json:"destOrderID"`
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.health.Ping(r.Context()); err != nil {
		a.logger.Warn("health check failed", "error", err)
		a.writeFailure(w, http.StatusServiceUnavailable, string(domain.KindStorageUnavailable), "storage unavailable", nil)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.eng.Snapshot(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, snap)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	view, err := a.eng.GetOrder(r.Context(), mux.Vars(r)["orderID"])
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, view)
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.eng.ListProducts(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, products)
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	if err := decode(r, &in); err != nil {
		a.badRequest(w, "%v", err)
		return
	}
	order, err := a.eng.CreateOrder(r.Context(), in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, order)
}

func (a *API) updateOrder(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	if err := decode(r, &in); err != nil {
		a.badRequest(w, "%v", err)
		return
	}
	order, err := a.eng.UpdateOrder(r.Context(), mux.Vars(r)["orderID"], in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, order)
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := a.eng.DeleteOrder(r.Context(), mux.Vars(r)["orderID"]); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, MessageBody{Message: "Order successfully deleted"})
}

func (a *API) addPosition(w http.ResponseWriter, r *http.Request) {
	var in domain.PositionInput
	if err := decode(r, &in); err != nil {
		a.badRequest(w, "%v", err)
		return
	}
	pos, err := a.eng.AddPosition(r.Context(), in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, pos)
}

func (a *API) updatePosition(w http.ResponseWriter, r *http.Request) {
	var req updatePositionRequest
	if err := decode(r, &req); err != nil {
		a.badRequest(w, "%v", err)
		return
	}
	if req.Quantity == nil {
		a.badRequest(w, "quantity is required")
		return
	}
	pos, err := a.eng.UpdatePosition(r.Context(), mux.Vars(r)["positionID"], *req.Quantity)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, pos)
}

func (a *API) deletePosition(w http.ResponseWriter, r *http.Request) {
	if err := a.eng.DeletePosition(r.Context(), mux.Vars(r)["positionID"]); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, MessageBody{Message: "Position successfully deleted"})
}

func (a *API) movePosition(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		a.badRequest(w, "%v", err)
		return
	}
	res, err := a.eng.MovePosition(r.Context(), req.PositionID, req.SrcOrderID, req.DestOrderID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

func (a *API) dailyUpdate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		a.badRequest(w, "missing ?date=YYYY-MM-DD parameter")
		return
	}
	day, err := domain.ParseDay(raw)
	if err != nil {
		a.badRequest(w, "invalid date %q: want YYYY-MM-DD", raw)
		return
	}

	res, err := a.timeline.Advance(r.Context(), day)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}
