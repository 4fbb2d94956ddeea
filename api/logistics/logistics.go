package logistics

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/logistics/loadopt"
	"TradeFlowERP/internal/config"
)

// StartLogisticsService serves load-suggestion queries on the logistics
// port. The gateway proxies /logistics/ here.
func StartLogisticsService(pool *pgxpool.Pool) {
	r := mux.NewRouter()
	r.Handle("/logistics/load-suggestions", LoadSuggestionsHandler(pool)).Methods(http.MethodGet)

	log.Println("Logistics Service started on " + config.LogisticsPort)
	if err := http.ListenAndServe(config.LogisticsPort, r); err != nil {
		log.Fatalf("Logistics Service failed: %v", err)
	}
}

const unassignedDeliveriesSQL = `
SELECT t.transaction_id,
       t.customer_id,
       COALESCE(NULLIF(t.customer_name, ''), c.name, '') AS customer_name,
       COALESCE(t.delivery_province, '')                 AS province,
       COALESCE(t.delivery_city, '')                     AS city,
       COALESCE(c.province, '')                          AS customer_province,
       COALESCE(c.city, '')                              AS customer_city,
       COALESCE(t.sales_amount, 0),
       COALESCE(t.return_amount, 0),
       COALESCE(t.item_count, 1),
       t.txn_date
FROM sales_transactions t
LEFT JOIN customers c ON c.customer_id = t.customer_id
WHERE t.company = $1
  AND t.load_id IS NULL
ORDER BY t.transaction_id`

// LoadSuggestionsHandler recomputes load groupings over the company's
// unassigned committed transactions. Nothing is written; the dispatcher
// accepts or ignores the suggestions.
func LoadSuggestionsHandler(pool *pgxpool.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		company := r.URL.Query().Get("company")
		if company == "" {
			http.Error(w, "company required", http.StatusBadRequest)
			return
		}
		max, _ := strconv.Atoi(r.URL.Query().Get("max"))
		if max <= 0 {
			max = 20
		}

		rows, err := pool.Query(r.Context(), unassignedDeliveriesSQL, company)
		if err != nil {
			log.Printf("[LOAD-SUGGEST] query failed company=%s: %v", company, err)
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		var deliveries []loadopt.Delivery
		for rows.Next() {
			var d loadopt.Delivery
			if err := rows.Scan(
				&d.TransactionID, &d.CustomerID, &d.CustomerName,
				&d.Province, &d.City, &d.CustomerProvince, &d.CustomerCity,
				&d.SalesAmount, &d.ReturnAmount, &d.ItemCount, &d.TxnDate,
			); err != nil {
				log.Printf("[LOAD-SUGGEST] scan failed: %v", err)
				http.Error(w, constants.ErrDB, http.StatusInternalServerError)
				return
			}
			deliveries = append(deliveries, d)
		}
		if rows.Err() != nil {
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}

		groups := loadopt.Suggest(deliveries, max, time.Now())
		log.Printf("[LOAD-SUGGEST] company=%s deliveries=%d groups=%d", company, len(deliveries), len(groups))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"suggestions": groups,
			"count":       len(groups),
		})
	})
}
