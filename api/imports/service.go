package imports

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"TradeFlowERP/internal/serviceiface"
)

// ImportsService owns the spreadsheet import pipeline's HTTP surface.
type ImportsService struct {
	config map[string]interface{}
	db     *sql.DB
	pool   *pgxpool.Pool
}

func NewImportsService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool) serviceiface.Service {
	return &ImportsService{config: cfg, db: db, pool: pool}
}

func (s *ImportsService) Name() string {
	return "imports"
}

func (s *ImportsService) Start() error {
	go StartImportsService(s.pool)
	return nil
}

func (s *ImportsService) Stop() error {
	return nil
}
