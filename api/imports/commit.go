package imports

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/imports/batchstore"
	"TradeFlowERP/api/imports/pipeline"
)

// CommitBatchHandler promotes a staged batch into the operational tables.
// The whole promotion runs in a single transaction: every eligible row lands
// or none do, and a stock snapshot's supersede-delete is never visible
// without its replacement rows.
func CommitBatchHandler(pool *pgxpool.Pool, store batchstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		// Take claims the batch atomically: a concurrent commit or cancel
		// for the same id loses the race instead of running twice.
		batch, err := store.Take(mux.Vars(r)["batchId"], pipeline.StatusParsed)
		if errors.Is(err, batchstore.ErrNotFound) {
			http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			stateErr := &BatchStateError{ID: batch.ID, Status: batch.Status, Op: "commit"}
			http.Error(w, stateErr.Error(), http.StatusConflict)
			return
		}

		committed, deleted, err := commitBatch(ctx, pool, batch)
		if err != nil {
			// Put the still-Parsed batch back so the upload survives a
			// transient database failure and can be retried.
			store.Put(batch)
			log.Printf("[IMPORT-COMMIT] batch=%s failed: %v", batch.ID, err)
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}

		batch.Status = pipeline.StatusCommitted
		log.Printf("[IMPORT-COMMIT] batch=%s type=%s committed=%d superseded=%d",
			batch.ID, batch.ImportType, committed, deleted)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"batch_id":        batch.ID,
			"status":          pipeline.StatusCommitted,
			"committed_count": committed,
			"deleted_count":   deleted,
		})
	})
}

func commitBatch(ctx context.Context, pool *pgxpool.Pool, batch *pipeline.Batch) (int64, int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	var committed, deleted int64
	switch batch.ImportType {
	case pipeline.TypeSalesReport:
		committed, err = copySalesTransactions(ctx, tx, batch)
	case pipeline.TypeTripSheet:
		committed, err = copyDeliveryLines(ctx, tx, batch)
	case pipeline.TypeStockOnHand:
		committed, deleted, err = copyStockSnapshots(ctx, tx, batch)
	}
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return committed, deleted, nil
}

func copySalesTransactions(ctx context.Context, tx pgx.Tx, batch *pipeline.Batch) (int64, error) {
	rows := make([][]interface{}, 0, len(batch.Records))
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.Eligible() {
			continue
		}
		rows = append(rows, []interface{}{
			batch.ID, batch.Company, rec.CustomerNumber, rec.CustomerName,
			rec.MatchedCustomerID, string(rec.MatchStatus), rec.MatchConfidence,
			rec.TxnNo, rec.TxnDate, rec.SalesAmount, rec.ReturnAmount,
			rec.Reference, batch.CreatedBy,
		})
	}
	return tx.CopyFrom(ctx,
		pgx.Identifier{"sales_transactions"},
		[]string{
			"batch_id", "company", "customer_number", "customer_name",
			"customer_id", "match_status", "match_confidence",
			"txn_no", "txn_date", "sales_amount", "return_amount",
			"reference", "created_by",
		},
		pgx.CopyFromRows(rows),
	)
}

func copyDeliveryLines(ctx context.Context, tx pgx.Tx, batch *pipeline.Batch) (int64, error) {
	rows := make([][]interface{}, 0, len(batch.Records))
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.Eligible() {
			continue
		}
		rows = append(rows, []interface{}{
			batch.ID, batch.Company, rec.InvoiceNo, rec.MatchedInvoiceID,
			rec.CustomerName, rec.MatchedCustomerID, string(rec.MatchStatus),
			rec.MatchConfidence, rec.TripDate, rec.DeliveryAddress,
			rec.Quantity, rec.Amount, batch.CreatedBy,
		})
	}
	return tx.CopyFrom(ctx,
		pgx.Identifier{"delivery_lines"},
		[]string{
			"batch_id", "company", "invoice_no", "invoice_id",
			"customer_name", "customer_id", "match_status",
			"match_confidence", "trip_date", "delivery_address",
			"quantity", "amount", "created_by",
		},
		pgx.CopyFromRows(rows),
	)
}

// copyStockSnapshots deletes the prior snapshot for the same company, date
// and locations before loading the replacement. Re-uploading a corrected
// file for the day is the normal workflow, not an error.
func copyStockSnapshots(ctx context.Context, tx pgx.Tx, batch *pipeline.Batch) (int64, int64, error) {
	asOf := time.Now().Truncate(24 * time.Hour)
	if batch.AsOfDate != nil {
		asOf = *batch.AsOfDate
	}

	locations := make([]string, 0, 4)
	seen := make(map[string]bool)
	rows := make([][]interface{}, 0, len(batch.Records))
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.Eligible() {
			continue
		}
		if !seen[rec.Location] {
			seen[rec.Location] = true
			locations = append(locations, rec.Location)
		}
		rows = append(rows, []interface{}{
			batch.ID, batch.Company, asOf, rec.StockCode, rec.Description,
			rec.QtyOnHand, rec.QtyOnPO, rec.QtyOnSO, rec.StockAvailable,
			rec.UnitCost, rec.TotalCost, rec.Location, batch.CreatedBy,
		})
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM stock_snapshots WHERE company = $1 AND as_of_date = $2 AND location = ANY($3)`,
		batch.Company, asOf, locations)
	if err != nil {
		return 0, 0, err
	}

	committed, err := tx.CopyFrom(ctx,
		pgx.Identifier{"stock_snapshots"},
		[]string{
			"batch_id", "company", "as_of_date", "stock_code", "description",
			"qty_on_hand", "qty_on_po", "qty_on_so", "stock_available",
			"unit_cost", "total_cost", "location", "created_by",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, 0, err
	}
	return committed, tag.RowsAffected(), nil
}
