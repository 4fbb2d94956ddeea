package imports

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/api/imports/batchstore"
	"TradeFlowERP/api/imports/refdata"
	"TradeFlowERP/internal/config"
)

// Pending is the process-wide store of not-yet-committed batches. The
// retention sweep in internal/jobs evicts stale entries.
var Pending batchstore.Store = batchstore.NewMemoryStore(config.BatchRetention)

// StartImportsService wires the import pipeline's routes and serves them on
// the imports port. The gateway proxies /imports/ here.
func StartImportsService(pool *pgxpool.Pool) {
	ref := refdata.NewPgReader(pool)

	r := mux.NewRouter()
	r.Handle("/imports/upload", UploadImportHandler(Pending, ref)).Methods(http.MethodPost)
	r.Handle("/imports/{batchId}/status", BatchStatusHandler(Pending)).Methods(http.MethodGet)
	r.Handle("/imports/{batchId}/lines", BatchLinesHandler(Pending)).Methods(http.MethodGet)
	r.Handle("/imports/{batchId}/commit", CommitBatchHandler(pool, Pending)).Methods(http.MethodPost)
	r.Handle("/imports/{batchId}/cancel", CancelBatchHandler(Pending)).Methods(http.MethodPost)
	r.Handle("/imports/{batchId}/issues.csv", IssuesCSVHandler(Pending)).Methods(http.MethodGet)

	log.Println("Imports Service started on " + config.ImportsPort)
	if err := http.ListenAndServe(config.ImportsPort, r); err != nil {
		log.Fatalf("Imports Service failed: %v", err)
	}
}
