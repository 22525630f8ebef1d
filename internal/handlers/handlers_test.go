package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/akolanti/TenderExtract/internal/api"
	"github.com/akolanti/TenderExtract/internal/data/store"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/akolanti/TenderExtract/internal/job"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExtractService struct{}

func (mockExtractService) ExtractDocument(_ context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error) {
	return extractionModel.NewMergedRecord(doc.Id), nil
}

func (mockExtractService) DetectTables(text string) detector.Detection {
	return detector.Detection{HasTables: strings.Contains(text, "\t"), EstimatedCount: 1, Confidence: 0.7}
}

func (mockExtractService) ProcessJob(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
	return j, nil
}

var (
	testJobs    *store.InMemoryJobStore
	testRecords *store.InMemoryRecordStore
	testService *job.Service
)

func TestMain(m *testing.M) {
	testJobs = store.InitInMemoryJobStore()
	testRecords = store.InitInMemoryRecordStore()
	testService = job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 16),
		DispatcherChannel: make(chan bool, 16),
		JobStore:          testJobs,
		RecordStore:       testRecords,
	})
	InitJobHandler(testService, mockExtractService{})
	os.Exit(m.Run())
}

func testRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/extract", ExtractHandler)
	r.Post("/detect", DetectHandler)
	r.Post("/ingest", PostIngestHandler)
	r.Get("/status/{id}", GetStatusHandler)
	r.Get("/export/{id}", ExportHandler)
	return r
}

func nextJob(t *testing.T) jobModel.Job {
	t.Helper()
	select {
	case j := <-testService.JobChannel:
		return j
	default:
		t.Fatal("no job was queued")
		return jobModel.Job{}
	}
}

func TestExtractHandlerQueuesTextJob(t *testing.T) {
	body := `{"document_id":"ihale-1","document_name":"Teknik Şartname","text":"Günlük 250 kişi"}`
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var res api.InitJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "status/"+res.Id, res.StatusURL)

	queued := nextJob(t)
	assert.Equal(t, res.Id, queued.Id)
	assert.Equal(t, jobModel.JobTypeText, queued.JobType)
	assert.Equal(t, "ihale-1", queued.JobPayload.DocumentId)
	assert.Equal(t, "Günlük 250 kişi", queued.JobPayload.Text)

	saved, ok := testJobs.GetJob(context.Background(), res.Id)
	require.True(t, ok, "queued job is visible to /status right away")
	assert.Equal(t, jobModel.JobStatusQueued, saved.Status)
}

func TestExtractHandlerRejectsBadBodies(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `{"text":`,
		"empty text": `{"document_id":"x","text":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var res api.JobResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, "Error", res.Result.Status)
		})
	}
}

func TestDetectHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(`{"text":"a\tb"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res api.DetectResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.True(t, res.HasTables)
	assert.Equal(t, 1, res.EstimatedCount)
}

func TestGetStatusHandler(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testJobs.SaveJob(ctx, jobModel.Job{
		Id:         "done-1",
		Status:     jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{DocumentId: "doc-7", Confidence: 0.9},
	}))
	record := extractionModel.NewMergedRecord("doc-7")
	record.Confidence = 0.9
	require.NoError(t, testRecords.SaveRecord(ctx, "done-1", record))

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/done-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "COMPLETE", res.Result.Status)
	require.NotNil(t, res.Result.Record)
	assert.Equal(t, "doc-7", res.Result.Record.DocumentID)

	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandler(t *testing.T) {
	require.NoError(t, testRecords.SaveRecord(context.Background(), "export-1", extractionModel.NewMergedRecord("doc-x")))

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/export-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "export-1.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_name", "Şartname"))
	fw, err := mw.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPostIngestHandlerQueuesFileJob(t *testing.T) {
	t.Chdir(t.TempDir())

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, multipartUpload(t, "../../sartname.txt", "Günlük 250 kişi"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	queued := nextJob(t)
	assert.Equal(t, jobModel.JobTypeFile, queued.JobType)
	assert.Equal(t, "Şartname", queued.JobPayload.DocumentName)
	assert.NotContains(t, queued.JobPayload.FilePath, "..")
	b, err := os.ReadFile(queued.JobPayload.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "Günlük 250 kişi", string(b), "upload is flushed before the job is queued")

	select {
	case <-testService.DispatcherChannel:
	default:
		t.Error("file jobs signal the dispatcher")
	}
}

func TestPostIngestHandlerRejectsUnsupportedType(t *testing.T) {
	t.Chdir(t.TempDir())

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, multipartUpload(t, "scan.png", "not a document"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.txt")
	require.NoError(t, saveUpload(strings.NewReader("İdare: X"), path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "İdare: X", string(b))
	require.NoError(t, os.Remove(path))

	broken := filepath.Join(dir, "broken.txt")
	readErr := errors.New("connection reset")
	assert.ErrorIs(t, saveUpload(iotest.ErrReader(readErr), broken), readErr)
	assert.NoFileExists(t, broken)

	assert.Error(t, saveUpload(strings.NewReader("x"), filepath.Join(dir, "missing", "a.txt")))
}
