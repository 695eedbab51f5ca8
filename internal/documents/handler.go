package documents

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/enrich"
	"docbrains-backend/internal/shared/server/respond"
	"docbrains-backend/internal/shared/telemetry"
)

// multipartOverhead leaves room for boundaries and part headers on top of the file limit.
const multipartOverhead = 1 << 20

// ExportWarningHeader flags a PDF export whose text lost characters.
const ExportWarningHeader = "X-Export-Warning"

const lossyExportWarning = "characters outside Windows-1252 were replaced with '?'; set EXPORT_FONT_PATH to a Unicode TrueType font"

func tooLargeMessage(limit int64) string {
	if limit%(1<<20) == 0 {
		return fmt.Sprintf("File too large. Maximum size: %dMB", limit>>20)
	}
	return fmt.Sprintf("File too large. Maximum size: %d bytes", limit)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/generate-summary", h.generateSummary)
	rg.POST("/generate-schema", h.generateSchema)
	rg.GET("/export-pdf/:document_id", h.exportPDF)
	rg.GET("/documents", h.list)
	rg.GET("/documents/export.xlsx", h.catalog)
	rg.GET("/document/:id", h.get)
	rg.GET("/document/:id/original", h.original)
	rg.DELETE("/document/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxUpload()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, tooLargeMessage(h.Svc.maxUpload()), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return
	}
	if h.Svc.TooLarge(fileHeader.Size) {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, tooLargeMessage(h.Svc.maxUpload()), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	contentType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if strings.EqualFold(contentType, "application/octet-stream") {
		contentType = ""
	}

	doc, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		h.fail(c, err, "failed to process document")
		return
	}

	c.Set(respond.DocumentIDKey, doc.ID)
	c.Set("extractionMethod", doc.ExtractionMethod)
	respond.OK(c, toUploadResponse(doc))
}

func (h *Handler) generateSummary(c *gin.Context) {
	var req generateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "document_id is required", nil)
		return
	}
	c.Set(respond.DocumentIDKey, req.DocumentID)

	doc, err := h.Svc.GenerateSummary(c.Request.Context(), req.DocumentID, SummaryRequest{
		Length:   req.SummaryType,
		Accuracy: req.AccuracyLevel,
	})
	if err != nil {
		h.fail(c, err, "failed to generate summary")
		return
	}

	respond.OK(c, SummaryResponse{
		DocumentID:    doc.ID,
		Summary:       doc.SummaryText,
		SummaryType:   doc.SummaryType,
		AccuracyLevel: string(enrich.ParseAccuracy(req.AccuracyLevel)),
	})
}

func (h *Handler) generateSchema(c *gin.Context) {
	var req generateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "document_id is required", nil)
		return
	}
	c.Set(respond.DocumentIDKey, req.DocumentID)

	doc, err := h.Svc.GenerateSchema(c.Request.Context(), req.DocumentID, req.SchemaType)
	if err != nil {
		h.fail(c, err, "failed to generate schema")
		return
	}

	respond.OK(c, SchemaResponse{
		DocumentID: doc.ID,
		Schema:     doc.SchemaText,
		SchemaType: doc.SchemaType,
	})
}

func (h *Handler) exportPDF(c *gin.Context) {
	id := c.Param("document_id")
	c.Set(respond.DocumentIDKey, id)

	file, err := h.Svc.Export(c.Request.Context(), id, c.Query("content_type"))
	if err != nil {
		h.fail(c, err, "failed to export document")
		return
	}
	defer func() {
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			telemetry.Warn("export.cleanup.failed", map[string]any{"path": file.Path, "error": err})
		}
	}()

	if file.Lossy {
		c.Header(ExportWarningHeader, lossyExportWarning)
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(file.Path, file.FileName)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list documents")
		return
	}

	resp := make([]ListItem, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toListItem(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) catalog(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Svc.WriteCatalog(c.Request.Context(), &buf); err != nil {
		h.fail(c, err, "failed to export catalog")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(respond.DocumentIDKey, id)

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, toDocumentResponse(doc))
}

func (h *Handler) original(c *gin.Context) {
	id := c.Param("id")
	c.Set(respond.DocumentIDKey, id)

	rc, doc, err := h.Svc.OpenOriginal(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to open original file")
		return
	}
	defer rc.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, doc.FileSize, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.FileName),
	})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(respond.DocumentIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete document")
		return
	}
	respond.Message(c, fmt.Sprintf("Document %s deleted successfully.", id))
}

// fail maps service errors onto the HTTP error envelope.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, tooLargeMessage(h.Svc.maxUpload()), nil)
	case errors.Is(err, ErrNoOriginal):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Original file not available", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Document not found", nil)
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrEmptyExtraction),
		errors.Is(err, ErrNoExtractedText),
		errors.Is(err, ErrContentUnavailable),
		errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, validationMessage(err), nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeUpstream, fallback+": "+err.Error(), err)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, fallback, err)
	}
}

func validationMessage(err error) string {
	for _, known := range []error{ErrUnsupportedType, ErrEmptyExtraction, ErrNoExtractedText, ErrContentUnavailable} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
