package logistics

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/internal/serviceiface"
)

// LogisticsService owns the load-suggestion HTTP surface.
type LogisticsService struct {
	config map[string]interface{}
	db     *sql.DB
	pool   *pgxpool.Pool
}

func NewLogisticsService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool) serviceiface.Service {
	return &LogisticsService{config: cfg, db: db, pool: pool}
}

func (s *LogisticsService) Name() string {
	return "logistics"
}

func (s *LogisticsService) Start() error {
	go StartLogisticsService(s.pool)
	return nil
}

func (s *LogisticsService) Stop() error {
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
