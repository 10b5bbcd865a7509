package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetdesk/internal/service"
)

// SubmissionHandler handles booking submission endpoints.
type SubmissionHandler struct {
	bookingService service.BookingService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(bookingService service.BookingService) *SubmissionHandler {
	return &SubmissionHandler{bookingService: bookingService}
}

// Create handles POST /api/v1/submissions
// Accepts a free-text booking request and returns the extracted record set.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req struct {
		Content     string `json:"content" binding:"required"`
		SenderEmail string `json:"sender_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "content is required")
		return
	}

	set, err := h.bookingService.ProcessText(c.Request.Context(), &service.CreateSubmissionInput{
		Content:     req.Content,
		SenderEmail: req.SenderEmail,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, set)
}

// Upload handles POST /api/v1/submissions/upload
// Accepts a multipart document (scanned form, table screenshot, PDF).
func (h *SubmissionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	set, err := h.bookingService.ProcessDocument(c.Request.Context(), &service.UploadSubmissionInput{
		Bytes:       data,
		ContentType: contentType,
		SenderEmail: c.PostForm("sender_email"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, set)
}

// List handles GET /api/v1/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 50)

	subs, total, err := h.bookingService.ListSubmissions(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	sub, err := h.bookingService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sub)
}

// Records handles GET /api/v1/submissions/:id/records
func (h *SubmissionHandler) Records(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	set, err := h.bookingService.GetRecordSet(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, set)
}

// Export handles GET /api/v1/submissions/:id/export?format=csv|xlsx
func (h *SubmissionHandler) Export(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")

	var contentType, ext string
	switch format {
	case "csv":
		contentType, ext = "text/csv; charset=utf-8", "csv"
	case "xlsx":
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "format must be csv or xlsx")
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.%s", id, time.Now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)

	if err := h.bookingService.Export(c.Request.Context(), id, format, c.Writer); err != nil {
		HandleError(c, err)
		return
	}
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	var out int
	if _, err := fmt.Sscanf(c.DefaultQuery(name, ""), "%d", &out); err != nil {
		return fallback
	}
	return out
}
