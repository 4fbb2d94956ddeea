package jobs

import (
	"fmt"
	"log"
	"time"

	"TradeFlowERP/api/imports"
	"TradeFlowERP/internal/logger"
)

// SweepExpiredBatches evicts pending import batches older than the retention
// window. A batch evicted here was parsed but never committed or cancelled;
// the uploader simply re-uploads.
func SweepExpiredBatches() {
	evicted := imports.Pending.EvictExpired(time.Now())
	if len(evicted) == 0 {
		return
	}
	log.Printf("[BATCH-SWEEP] evicted %d expired import batch(es)", len(evicted))
	logr := logger.GlobalLogger
	for _, id := range evicted {
		msg := fmt.Sprintf("Import batch expired and evicted: %s", id)
		if logr != nil {
			logr.LogAudit(msg)
		} else {
			log.Println(msg)
		}
	}
}
