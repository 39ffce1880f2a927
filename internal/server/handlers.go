package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

const devAPIKey = "dev-key-12345"

type indexView struct {
	TesseractAvailable bool
	OCRVersion         string
	OllamaAvailable    bool
	OllamaModel        string
	Models             []string
	APIKeyHint         string
	AllowedTypes       string
}

func (s *Server) index(c *gin.Context) {
	view := indexView{
		TesseractAvailable: s.caps.OCRAvailable,
		OCRVersion:         s.caps.OCRVersion,
		OllamaAvailable:    s.caps.LLMAvailable,
		OllamaModel:        s.model,
		Models:             s.caps.Models,
		AllowedTypes:       strings.Join(constants.AllowedContentTypes, ", "),
	}
	// Only the development default is safe to pre-fill on a public page.
	if s.apiKey == devAPIKey {
		view.APIKeyHint = devAPIKey
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTemplate.Execute(c.Writer, view); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, entity.HealthResponse{
		Status:             constants.StatusHealthy,
		TesseractAvailable: s.caps.OCRAvailable,
		OllamaAvailable:    s.caps.LLMAvailable,
		OllamaModel:        s.model,
		Timestamp:          time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) extractInvoice(c *gin.Context) {
	received := time.Now()
	ctx := c.Request.Context()
	logger := common.LoggerFromContext(ctx, s.logger)

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, common.ValidationErrorf("Missing file upload: %v", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if !constants.IsAllowedContentType(contentType) {
		logger.Info("extract.rejected", "filename", fh.Filename, "content_type", contentType)
		writeError(c, common.ValidationErrorf("Invalid file type. Allowed: %s", allowedList()))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, common.InternalErrorf(err, "Processing error: %v", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, common.InternalErrorf(err, "Processing error: %v", err))
		return
	}

	logger.Info("extract.start", "filename", fh.Filename, "content_type", contentType, "bytes", len(data))
	resp, err := s.proc.Process(ctx, pipeline.Document{
		Filename: fh.Filename,
		Data:     data,
		Received: received,
	})
	if err != nil {
		logger.Warn("extract.failed", "filename", fh.Filename, "kind", common.KindOf(err).String(), "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// allowedList renders the allow-list as ['a', 'b'].
func allowedList() string {
	quoted := make([]string, len(constants.AllowedContentTypes))
	for i, ct := range constants.AllowedContentTypes {
		quoted[i] = fmt.Sprintf("'%s'", ct)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
