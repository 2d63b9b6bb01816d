package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/pkg/response"
)

func NewRouter(panelHandler *PanelHandler, healthHandler *HealthHandler, logger *log.Logger) *mux.Router {
	if logger == nil {
		logger = log.Nop()
	}

	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(logger.WithComponent(log.ComponentHTTP).Logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.Method+" "+r.URL.Path)
	})

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(response.JSONMiddleware)

	api.HandleFunc("/dashboard", panelHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/digest", panelHandler.GetDigest).Methods("GET")
	api.HandleFunc("/fees/due", panelHandler.GetDueFees).Methods("GET")
	api.HandleFunc("/fees", panelHandler.CreateFee).Methods("POST")
	api.HandleFunc("/students", panelHandler.CreateStudent).Methods("POST")
	api.HandleFunc("/departments", panelHandler.CreateDepartment).Methods("POST")
	api.HandleFunc("/departments/{id}", panelHandler.UpdateDepartment).Methods("PUT")
	api.HandleFunc("/employees", panelHandler.CreateEmployee).Methods("POST")

	return router
}
