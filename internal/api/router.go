package api

import (
	"net/http"

	"hospital-route-service/internal/api/handlers"
	"hospital-route-service/internal/ports"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP surface is wired with.
// StaticDir may be empty, in which case no static assets are served.
type Deps struct {
	Logger    *zap.Logger
	Dataset   ports.DatasetReader
	Resolver  handlers.RouteResolver
	StaticDir string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	datasetHandler := &handlers.DatasetHandler{Reader: deps.Dataset}
	routeHandler := &handlers.RouteHandler{Resolver: deps.Resolver}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	apiRouter.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	apiRouter.HandleFunc("/dataset", datasetHandler.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/route", routeHandler.Resolve).Methods(http.MethodPost)

	if deps.StaticDir != "" {
		r.PathPrefix("/").Handler(handlers.Static(deps.StaticDir))
	}

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		ghandlers.ExposedHeaders([]string{requestIDHeader}),
	)

	var h http.Handler = r
	h = loggingMiddleware(h)
	h = requestContext(logger)(h)
	h = cors(h)
	h = ghandlers.RecoveryHandler(ghandlers.RecoveryLogger(recoveryLogger{logger: logger}))(h)
	return h
}
