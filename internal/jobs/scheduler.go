package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"TradeFlowERP/internal/config"
	"TradeFlowERP/internal/logger"
	"TradeFlowERP/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	schedule := config.RetentionSweepSchedule
	if s.config != nil {
		if v, ok := s.config["retention_sweep_schedule"].(string); ok && v != "" {
			schedule = v
		}
	}

	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}

	s.cron = cron.New(cron.WithLocation(loc))
	if _, err := s.cron.AddFunc(schedule, SweepExpiredBatches); err != nil {
		return fmt.Errorf("unable to schedule batch retention sweep: %v", err)
	}
	s.cron.Start()

	if logr := logger.GlobalLogger; logr != nil {
		logr.LogAudit("Batch retention sweeper scheduled: " + schedule)
	}
	log.Println("Cron service started, batch retention sweep scheduled")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
