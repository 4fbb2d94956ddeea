package imports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"TradeFlowERP/api/constants"
	"TradeFlowERP/api/imports/batchstore"
	"TradeFlowERP/api/imports/match"
	"TradeFlowERP/api/imports/pipeline"
	"TradeFlowERP/api/imports/refdata"
	"TradeFlowERP/api/imports/sheet"
)

// BatchStateError rejects commit/cancel attempted against a batch outside
// the expected lifecycle state. Nothing is mutated.
type BatchStateError struct {
	ID     string
	Status pipeline.BatchStatus
	Op     string
}

func (e *BatchStateError) Error() string {
	return fmt.Sprintf("cannot %s batch %s in status %s", e.Op, e.ID, e.Status)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// UploadImportHandler is parseAndValidate: one synchronous pass over one
// uploaded sheet, staging the result in the pending store.
func UploadImportHandler(store batchstore.Store, ref refdata.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Missing 'file' field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		importType := r.FormValue("import_type")
		sc := pipeline.SchemaFor(importType)
		if sc == nil {
			http.Error(w, "Unknown import_type: "+importType, http.StatusBadRequest)
			return
		}
		company := r.FormValue("company")
		if company == "" {
			http.Error(w, "company required", http.StatusBadRequest)
			return
		}
		strict := r.FormValue("strict") == "true"
		createdBy := r.FormValue("created_by")

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}

		grid, err := sheet.Open(data)
		if err != nil {
			// ParseError class: aborts before any batch is created.
			http.Error(w, "Invalid or empty file: "+header.Filename+": "+err.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now()
		batch := &pipeline.Batch{
			ID:         uuid.New().String(),
			FileName:   header.Filename,
			ImportType: importType,
			Company:    company,
			Strict:     strict,
			Status:     pipeline.StatusParsing,
			CreatedAt:  now,
			CreatedBy:  createdBy,
		}
		if importType == pipeline.TypeStockOnHand {
			asOf := now.Truncate(24 * time.Hour)
			if v := r.FormValue("as_of_date"); v != "" {
				if t, perr := time.Parse(constants.DateFormat, v); perr == nil {
					asOf = t
				}
			}
			batch.AsOfDate = &asOf
		}

		records, issues, summary, err := pipeline.Run(grid, sc, strict)
		batch.Records = records
		batch.Issues = issues
		batch.Summary = summary

		var missingErr *pipeline.MissingColumnsError
		if errors.As(err, &missingErr) {
			batch.Status = pipeline.StatusFailed
			store.Put(batch)
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success":         false,
				"batch_id":        batch.ID,
				"status":          batch.Status,
				"error":           missingErr.Error(),
				"missing_columns": missingErr.Missing,
			})
			return
		}
		var abortErr *pipeline.StrictAbortError
		if errors.As(err, &abortErr) {
			batch.Status = pipeline.StatusFailed
			store.Put(batch)
			log.Printf("[IMPORT-UPLOAD] strict abort batch=%s file=%s: %v", batch.ID, batch.FileName, err)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success":  false,
				"batch_id": batch.ID,
				"status":   batch.Status,
				"error":    abortErr.Error(),
				"issues":   batch.Issues,
			})
			return
		}
		if err != nil {
			batch.Status = pipeline.StatusFailed
			store.Put(batch)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false, "batch_id": batch.ID, "status": batch.Status, "error": err.Error(),
			})
			return
		}

		if err := runMatcher(ctx, ref, company, batch); err != nil {
			batch.Status = pipeline.StatusFailed
			store.Put(batch)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false, "batch_id": batch.ID, "status": batch.Status, "error": constants.ErrDB,
			})
			return
		}

		parsedAt := time.Now()
		batch.ParsedAt = &parsedAt
		batch.Status = pipeline.StatusParsed
		batch.Summary = pipeline.BuildSummary(batch.Summary.RowsScanned, batch.Records, batch.Issues)
		store.Put(batch)

		if url, aerr := archiveOriginal(ctx, batch, data); aerr != nil {
			log.Printf("[IMPORT-UPLOAD] archive failed batch=%s: %v", batch.ID, aerr)
		} else if url != "" {
			log.Printf("[IMPORT-UPLOAD] archived batch=%s to %s", batch.ID, url)
		}

		log.Printf("[IMPORT-UPLOAD] batch=%s type=%s file=%s records=%d issues=%d",
			batch.ID, importType, batch.FileName, len(batch.Records), len(batch.Issues))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"batch_id": batch.ID,
			"status":   batch.Status,
			"summary":  batch.Summary,
			"issues":   batch.Issues,
		})
	})
}

func runMatcher(ctx context.Context, ref refdata.Reader, company string, batch *pipeline.Batch) error {
	customers, err := ref.Customers(ctx, company)
	if err != nil {
		return err
	}
	invoices, err := ref.Invoices(ctx, company)
	if err != nil {
		return err
	}
	match.NewMatcher(customers, invoices).MatchAll(batch.Records)
	return nil
}

// BatchStatusHandler reports a pending batch's lifecycle state and summary.
func BatchStatusHandler(store batchstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch, err := store.Get(mux.Vars(r)["batchId"])
		if err != nil {
			http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"batch":       batch,
			"issue_count": len(batch.Issues),
		})
	})
}

// BatchLinesHandler pages through a batch's staged records for preview.
func BatchLinesHandler(store batchstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch, err := store.Get(mux.Vars(r)["batchId"])
		if err != nil {
			http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		if pageSize < 1 || pageSize > 500 {
			pageSize = 100
		}
		start := (page - 1) * pageSize
		end := start + pageSize
		total := len(batch.Records)
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"batch_id":  batch.ID,
			"page":      page,
			"page_size": pageSize,
			"total":     total,
			"lines":     batch.Records[start:end],
		})
	})
}

// CancelBatchHandler discards a staged batch. Only valid pre-commit, so no
// rollback of written work is ever needed.
func CancelBatchHandler(store batchstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch, err := store.Take(mux.Vars(r)["batchId"], pipeline.StatusParsed)
		if errors.Is(err, batchstore.ErrNotFound) {
			http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			stateErr := &BatchStateError{ID: batch.ID, Status: batch.Status, Op: "cancel"}
			http.Error(w, stateErr.Error(), http.StatusConflict)
			return
		}
		batch.Status = pipeline.StatusCancelled
		log.Printf("[IMPORT-CANCEL] batch=%s file=%s", batch.ID, batch.FileName)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"batch_id": batch.ID,
			"status":   pipeline.StatusCancelled,
		})
	})
}

// IssuesCSVHandler exports a batch's issues for offline review.
// Columns: row index, severity, code, message, entity code, location.
func IssuesCSVHandler(store batchstore.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch, err := store.Get(mux.Vars(r)["batchId"])
		if err != nil {
			http.Error(w, constants.ErrBatchNotFound, http.StatusNotFound)
			return
		}
		w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeCSV)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.ID+"-issues.csv"))
		cw := csv.NewWriter(w)
		cw.Write([]string{"row_index", "severity", "code", "message", "entity_code", "location"})
		for _, is := range batch.Issues {
			cw.Write([]string{
				strconv.Itoa(is.RowIndex),
				is.Severity,
				is.Code,
				is.Message,
				is.EntityCode,
				is.Location,
			})
		}
		cw.Flush()
	})
}
