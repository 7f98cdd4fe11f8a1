package http

import (
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
)

// RouterConfig holds the cross-cutting settings of the HTTP surface
type RouterConfig struct {
	// AllowedOrigins for CORS, "*" allows any
	AllowedOrigins []string
}

func NewRouter(
	ph *ProductHandler,
	wsh *websocketTransport.Handler,
	validator *domain.Validation,
	logger hclog.Logger,
	cfg RouterConfig,
) http.Handler {
	router := mux.NewRouter()

	mw := NewMiddleware(logger, validator)
	router.Use(mw.LoggingMiddleware)

	products := router.PathPrefix("/products").Subrouter()
	products.HandleFunc("/hello", ph.Hello).Methods(http.MethodGet)
	products.HandleFunc("/all-products", ph.GetAllProducts).Methods(http.MethodGet)
	products.HandleFunc("/find-product/{productId}", ph.GetProduct).Methods(http.MethodGet)
	products.HandleFunc("/search", ph.SearchProducts).Methods(http.MethodGet)
	products.HandleFunc("/update-product/{productId}", ph.UpdateProduct).Methods(http.MethodPut)
	products.HandleFunc("/delete-product/{productId}", ph.DeleteProduct).Methods(http.MethodDelete)
	products.HandleFunc("/import-json", ph.ImportJSON).Methods(http.MethodPost)
	products.HandleFunc("/{productId}/add-ratings", ph.AddRatings).Methods(http.MethodPost)
	products.HandleFunc("/{productId}/{userId}/update-rates", ph.UpdateRates).Methods(http.MethodPut)

	// the product body is decoded and validated before the handler runs
	addRouter := products.Methods(http.MethodPost).Subrouter()
	addRouter.HandleFunc("/add-product", ph.AddProduct)
	addRouter.Use(mw.ProductValidationMiddleware)

	router.HandleFunc("/ws", wsh.HandleWebSocket).Methods(http.MethodGet)

	// swagger.yaml lives at the module root
	_, filename, _, _ := runtime.Caller(0)
	rootDir := filepath.Join(filepath.Dir(filename), "..", "..", "..")
	swaggerFilePath := filepath.Join(rootDir, "swagger.yaml")

	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, swaggerFilePath)
	}).Methods(http.MethodGet)

	redoc := middleware.Redoc(middleware.RedocOpts{SpecURL: "/swagger.yaml"}, nil)
	router.Handle("/docs", redoc).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
		handlers.PrintRecoveryStack(true),
	)

	return recovery(cors(handlers.CompressHandler(router)))
}
