package router

import (
	"net/http"

	"procurement/internal/controller"
)

// NewRouter wires the API routes; metrics is served at /metrics when not nil.
func NewRouter(c *controller.Controller, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)
	mux.HandleFunc("POST /api/evaluate", c.Evaluate)
	mux.HandleFunc("POST /api/demands/new", c.NewDemand)
	mux.HandleFunc("GET /api/demands/my", c.MyDemands)
	mux.HandleFunc("GET /api/demands/{demandId}", c.GetDemand)
	mux.HandleFunc("PUT /api/demands/{demandId}/decision", c.DemandDecision)
	mux.HandleFunc("POST /api/tenders/new", c.NewTender)
	mux.HandleFunc("GET /api/tenders", c.GetTenders)
	mux.HandleFunc("GET /api/tenders/{tenderId}", c.GetTender)
	mux.HandleFunc("POST /api/orders/new", c.NewOrder)
	mux.HandleFunc("GET /api/orders/my", c.MyOrders)
	mux.HandleFunc("GET /api/orders/{tenderId}/list", c.TenderOrders)
	mux.HandleFunc("GET /api/orders/{tenderId}/evaluation", c.TenderEvaluation)
	mux.HandleFunc("PUT /api/orders/{orderId}/decision", c.OrderDecision)

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Accept", "*/*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}
