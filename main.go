package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/finledger/finance_ledger/api"
	"github.com/finledger/finance_ledger/internal/contextutil"
	"github.com/finledger/finance_ledger/internal/ledger"
	"github.com/finledger/finance_ledger/internal/storage"
	"github.com/finledger/finance_ledger/logging"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

// withTraceID tags every request context so storage errors can be
// correlated in the logs.
func withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	db, err := storage.Init()
	if err != nil {
		logging.Logger.Errorf("failed to initialize database: %v", err)
		return
	}

	storageInstance := storage.NewMySQLStorage(db)
	lg := ledger.NewLedger(storageInstance, ledger.SystemClock{})
	logging.Logger.Infof("ledger ready with '%s' storage", lg.StorageType)

	router := api.NewRouter(api.NewApi(&lg))

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(withTraceID(router))
	err = http.ListenAndServe(":"+port, handlerWithCors) // Start the server
	if err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
