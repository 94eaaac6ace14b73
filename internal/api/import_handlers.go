package api

import (
	"net/http"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/sheet"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// handleImportUpload accepts a spreadsheet file (xlsx or csv) in the "file"
// multipart field and feeds its rows through the bulk import.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()

	log.Info("import upload: %s (%d bytes)", header.Filename, header.Size)

	rows, err := sheet.Parse(header.Filename, file)
	if err != nil {
		log.Warn("failed to parse upload %s: %v", header.Filename, err)
		handleError(w, r, errors.NewBadRequestError("could not read spreadsheet: "+err.Error()))
		return
	}
	if len(rows) == 0 {
		handleError(w, r, errors.NewBadRequestError("spreadsheet has no data rows below the header"))
		return
	}

	result, err := s.ImportService.BulkImport(r.Context(), rows)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

// handleExport streams the full store in the 4-column spreadsheet layout.
// format=csv selects CSV; anything else produces an xlsx workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	qs, err := s.QuestionService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if qs == nil {
		qs = []models.Question{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="questions.csv"`)
		if err := sheet.WriteCSV(w, qs); err != nil {
			log.Error("failed to write csv export: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.xlsx"`)
	if err := sheet.WriteXLSX(w, qs); err != nil {
		log.Error("failed to write xlsx export: %v", err)
	}
}
