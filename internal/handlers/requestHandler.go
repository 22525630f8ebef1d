package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/akolanti/TenderExtract/internal/adapter"
	"github.com/akolanti/TenderExtract/internal/adapter/utils"
	"github.com/akolanti/TenderExtract/internal/api"
	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract/docsource"
	"github.com/akolanti/TenderExtract/internal/extract/export"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id           string
	traceId      string
	jobType      jobModel.JobType
	documentId   string
	documentName string
	text         string
	filePath     string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ExtractHandler godoc
// @Summary      Queue extraction of a tender text
// @Description  Accepts plain tender text, queues a background extraction job and returns its id.
// @Tags         Extraction
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ExtractRequest   true  "Tender text with optional document id and name"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request body or empty text"
// @Router       /extract [post]
func ExtractHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ExtractRequest
	request.Body = http.MaxBytesReader(w, request.Body, config.MaxTextRequestSize)
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the extract handler reader", "err", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, requestData.DocumentId, "Text too large")
			return
		}
		logRH.Warn("Bad extract request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.DocumentId, "Bad Request")
		return
	}
	if !ValidateExtractRequest(requestData.Text) {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.DocumentId, "text is required")
		return
	}

	processNewJobData(request, w, newJobData{
		jobType:      jobModel.JobTypeText,
		documentId:   requestData.DocumentId,
		documentName: requestData.DocumentName,
		text:         requestData.Text,
	})
}

// DetectHandler godoc
// @Summary      Detect tables in a tender text
// @Description  Runs the table presence heuristic synchronously. No model is called.
// @Tags         Extraction
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.DetectRequest   true  "Tender text"
// @Success      200      {object}  api.DetectResponse
// @Failure      400      {object}  api.JobResponse     "Invalid request body"
// @Router       /detect [post]
func DetectHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		return
	}
	var requestData api.DetectRequest
	request.Body = http.MaxBytesReader(w, request.Body, config.MaxTextRequestSize)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Text == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "text is required")
		return
	}
	detection, ok := DetectTables(requestData.Text)
	if !ok {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Extraction service unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDetectResponse(detection))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a job. Completed jobs carry the merged record.
// @Tags         Job Status
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.PathID(r)
	trace := traceId(r.Context())
	result, isFound := validateId(idString, trace)

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	var record *extractionModel.MergedRecord
	if result.Status == jobModel.JobStatusComplete {
		if r, ok := GetJobRecord(idString, trace); ok {
			record = &r
		}
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result, record))
}

// ExportHandler godoc
// @Summary      Download the merged record as XLSX
// @Description  Renders a completed job's merged record into a workbook with summary, list, table and warning sheets.
// @Tags         Job Status
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {file}    file
// @Failure      404  {object}  api.JobResponse   "Job not found or not complete"
// @Failure      500  {object}  api.JobResponse   "Workbook could not be rendered"
// @Router       /export/{id} [get]
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.PathID(r)
	record, ok := GetJobRecord(idString, traceId(r.Context()))
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, idString, "No completed extraction for this job")
		return
	}
	body, err := export.RecordXLSX(r.Context(), record)
	if err != nil {
		logRH.Error("Export failed", "jobId", idString, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, idString, "Export error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, idString))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logRH.Error("Writing export failed", "jobId", idString, "err", err)
	}
}

// PostIngestHandler handles the uploading of tender documents.
// @Summary      Upload a tender document for extraction
// @Description  Receives a PDF, DOCX or text file via multipart/form-data, saves it to a temporary directory, and queues an extraction job.
// @Tags         Extraction
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        document_name  formData  string  false "The display name of the document"
// @Param        document_id    formData  string  false "Caller supplied document id"
// @Param        document       formData  file    true  "The PDF, DOCX or TXT file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      415  {object}  api.JobResponse "Unsupported file type"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	original := filepath.Base(fileMetadata.Filename)
	if docsource.DocType(original) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, original, "Only PDF, DOCX and text files are supported")
		return
	}
	docName := r.FormValue("document_name")
	if docName == "" {
		docName = original
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), original))
	if err := saveUpload(fileReader, tempFilePath); err != nil {
		logRH.Error("Couldn't store upload", "path", tempFilePath, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	// the file is closed here, a worker may pick it up and remove it
	processNewJobData(r, w, newJobData{
		jobType:      jobModel.JobTypeFile,
		documentId:   r.FormValue("document_id"),
		documentName: docName,
		filePath:     tempFilePath,
	})
}
