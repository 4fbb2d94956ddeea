package imports

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeFlowERP/api/imports/batchstore"
	"TradeFlowERP/api/imports/match"
	"TradeFlowERP/api/imports/pipeline"
)

// stubReader serves fixed reference data without a database.
type stubReader struct {
	customers []match.Customer
	invoices  []match.Invoice
}

func (s *stubReader) Customers(ctx context.Context, company string) ([]match.Customer, error) {
	return s.customers, nil
}

func (s *stubReader) Invoices(ctx context.Context, company string) ([]match.Invoice, error) {
	return s.invoices, nil
}

func testRouter(store batchstore.Store) *mux.Router {
	ref := &stubReader{
		customers: []match.Customer{
			{ID: 1, Code: "100", Name: "Acme Traders", Address: "14 Church Street"},
			{ID: 2, Code: "200", Name: "Bravo Foods"},
		},
		invoices: []match.Invoice{{ID: 10, Number: "ABC123", CustomerID: 1}},
	}
	r := mux.NewRouter()
	r.Handle("/imports/upload", UploadImportHandler(store, ref)).Methods(http.MethodPost)
	r.Handle("/imports/{batchId}/status", BatchStatusHandler(store)).Methods(http.MethodGet)
	r.Handle("/imports/{batchId}/lines", BatchLinesHandler(store)).Methods(http.MethodGet)
	r.Handle("/imports/{batchId}/cancel", CancelBatchHandler(store)).Methods(http.MethodPost)
	r.Handle("/imports/{batchId}/issues.csv", IssuesCSVHandler(store)).Methods(http.MethodGet)
	return r
}

func multipartUpload(t *testing.T, fields map[string]string, fileName string, fileData []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

const tripSheetCSV = `Inv No,Customer Name,Address,Qty,Amount,Date
ABC123,Acme Traders,14 Church Street,10,"5,000.00",05/01/2024
XY99,Bravo Foodz,1 Main Road,4,1200,05/01/2024
`

func TestUploadTripSheetCSV(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	router := testRouter(store)

	req := multipartUpload(t, map[string]string{
		"import_type": pipeline.TypeTripSheet,
		"company":     "TFD",
		"created_by":  "thandi",
	}, "trip.csv", []byte(tripSheetCSV))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		BatchID string `json:"batch_id"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, string(pipeline.StatusParsed), resp.Status)

	batch, err := store.Get(resp.BatchID)
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)

	// Invoice-number hit on the reference set.
	assert.Equal(t, pipeline.MatchMatched, batch.Records[0].MatchStatus)
	assert.Equal(t, 1.0, batch.Records[0].MatchConfidence)

	// "Bravo Foodz" is only a fuzzy hit.
	assert.NotEqual(t, pipeline.MatchUnvalidated, batch.Records[1].MatchStatus)
}

func TestUploadRejectsUnknownImportType(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	req := multipartUpload(t, map[string]string{
		"import_type": "wishlist",
		"company":     "TFD",
	}, "x.csv", []byte("a,b\n"))

	rec := httptest.NewRecorder()
	testRouter(store).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMissingColumnsStoresFailedBatch(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	req := multipartUpload(t, map[string]string{
		"import_type": pipeline.TypeStockOnHand,
		"company":     "TFD",
	}, "stock.csv", []byte("Stock Code,Description\nW-01,Widgets\n"))

	rec := httptest.NewRecorder()
	testRouter(store).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		BatchID string   `json:"batch_id"`
		Status  string   `json:"status"`
		Missing []string `json:"missing_columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(pipeline.StatusFailed), resp.Status)
	assert.ElementsMatch(t, []string{"QtyOnHand", "UnitCost"}, resp.Missing)

	// The failed batch is kept for inspection until retention evicts it.
	batch, err := store.Get(resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusFailed, batch.Status)
}

func TestCancelBatch(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	router := testRouter(store)

	req := multipartUpload(t, map[string]string{
		"import_type": pipeline.TypeTripSheet,
		"company":     "TFD",
	}, "trip.csv", []byte(tripSheetCSV))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		BatchID string `json:"batch_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports/"+resp.BatchID+"/cancel", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := store.Get(resp.BatchID)
	assert.Error(t, err)

	// Cancelling again is a 404: the batch is gone.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports/"+resp.BatchID+"/cancel", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelFailedBatchConflicts(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	store.Put(&pipeline.Batch{ID: "failed-1", Status: pipeline.StatusFailed, CreatedAt: time.Now()})

	rec := httptest.NewRecorder()
	testRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports/failed-1/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBatchLinesPaging(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	batch := &pipeline.Batch{ID: "b-1", Status: pipeline.StatusParsed, CreatedAt: time.Now()}
	for i := 0; i < 5; i++ {
		batch.Records = append(batch.Records, pipeline.StagedRecord{RowIndex: i + 1})
	}
	store.Put(batch)

	rec := httptest.NewRecorder()
	testRouter(store).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/imports/b-1/lines?page=2&page_size=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int                     `json:"total"`
		Lines []pipeline.StagedRecord `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, 3, resp.Lines[0].RowIndex)
}

func TestIssuesCSVExport(t *testing.T) {
	store := batchstore.NewMemoryStore(time.Hour)
	store.Put(&pipeline.Batch{
		ID:        "b-2",
		Status:    pipeline.StatusParsed,
		CreatedAt: time.Now(),
		Issues: []pipeline.Issue{
			{RowIndex: 4, Severity: "warning", Code: "INVALID_QTY", Message: "Qty value \"many\" is not numeric", EntityCode: "ABC123"},
		},
	})

	rec := httptest.NewRecorder()
	testRouter(store).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/imports/b-2/issues.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "row_index,severity,code,message,entity_code,location")
	assert.Contains(t, rec.Body.String(), "4,warning,INVALID_QTY")
}
