package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"audioscribe/internal/apperr"
	"audioscribe/internal/model"
	"audioscribe/internal/transcribe"
	"audioscribe/internal/upload"
	"audioscribe/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// multipartSlack covers multipart framing on top of the file size ceiling.
const multipartSlack = 1 << 20

// Uploads is the upload orchestrator as seen by the handlers.
type Uploads interface {
	Validate(req model.UploadRequest) error
	Upload(ctx context.Context, req model.UploadRequest) (*upload.Outcome, error)
	MaxBytes() int64
}

// Transcriber is the transcription orchestrator as seen by the handlers.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (*model.TranscriptionResult, error)
	TranscribeDirect(ctx context.Context, req transcribe.DirectRequest) (*model.TranscriptionResult, error)
	DirectMaxBytes() int64
}

// Handler serves the upload and transcription endpoints.
type Handler struct {
	uploads     Uploads
	transcriber Transcriber
}

// NewHandler creates a Handler.
func NewHandler(uploads Uploads, transcriber Transcriber) *Handler {
	return &Handler{uploads: uploads, transcriber: transcriber}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	GCSURI   string `json:"gcsUri"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

type transcribeRequest struct {
	GCSURI       string `json:"gcsUri" binding:"required"`
	AudioFormat  string `json:"audioFormat" binding:"required"`
	LanguageMode string `json:"languageMode"`
}

type transcribeResponse struct {
	Transcription     string   `json:"transcription"`
	Confidence        float64  `json:"confidence"`
	Language          string   `json:"language"`
	SegmentCount      int      `json:"segmentCount"`
	TotalWords        int      `json:"totalWords"`
	DetectedLanguages []string `json:"detectedLanguages,omitempty"`
	PrimaryLanguage   string   `json:"primaryLanguage,omitempty"`
	Message           string   `json:"message,omitempty"`
}

type directResponse struct {
	Transcription string   `json:"transcription"`
	Confidence    *float64 `json:"confidence"`
	Language      string   `json:"language"`
	TotalWords    int      `json:"totalWords"`
	Duration      float64  `json:"duration"`
	Segments      int      `json:"segments"`
	Model         string   `json:"model"`
	Message       string   `json:"message,omitempty"`
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "audioscribe",
	})
}

// uploadAudio stores the multipart field "audio" and returns its gs:// URI.
func (h *Handler) uploadAudio(c *gin.Context) {
	log := loggerFrom(c)

	file, err := c.FormFile("audio")
	if err != nil {
		utils.Fail(c, log, formFileError(err, h.uploads.MaxBytes()))
		return
	}

	req := model.UploadRequest{
		FileName:    file.Filename,
		ContentType: model.DeclaredMediaType(file.Header.Get("Content-Type"), file.Filename),
		Size:        file.Size,
	}
	if err := h.uploads.Validate(req); err != nil {
		utils.Fail(c, log, err)
		return
	}

	req.Data, err = readFormFile(file)
	if err != nil {
		utils.Fail(c, log, err)
		return
	}

	out, err := h.uploads.Upload(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, log, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		GCSURI:   out.Ref.URI(),
		FileName: file.Filename,
		Size:     out.Size,
		Type:     out.ContentType,
	})
}

// transcribeStored runs queued recognition for a previously uploaded object.
func (h *Handler) transcribeStored(c *gin.Context) {
	log := loggerFrom(c)

	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, log, bindError(err))
		return
	}

	// Recognition keeps running if the browser goes away; the result is discarded.
	ctx := context.WithoutCancel(c.Request.Context())
	res, err := h.transcriber.Transcribe(ctx, transcribe.Request{
		URI:    req.GCSURI,
		Format: req.AudioFormat,
		Mode:   req.LanguageMode,
	})
	if err != nil {
		utils.Fail(c, log, err)
		return
	}

	resp := transcribeResponse{
		Transcription:     res.Transcript,
		Language:          res.Language,
		SegmentCount:      res.SegmentCount,
		TotalWords:        res.TotalWords,
		DetectedLanguages: res.DetectedLanguages,
		PrimaryLanguage:   res.PrimaryLanguage,
		Message:           res.Message,
	}
	if res.Confidence != nil {
		resp.Confidence = *res.Confidence
	}
	c.JSON(http.StatusOK, resp)
}

// transcribeDirect sends the multipart field "audio" straight to the direct provider.
func (h *Handler) transcribeDirect(c *gin.Context) {
	log := loggerFrom(c)
	limit := h.transcriber.DirectMaxBytes()

	file, err := c.FormFile("audio")
	if err != nil {
		utils.Fail(c, log, formFileError(err, limit))
		return
	}
	if limit > 0 && file.Size > limit {
		utils.Fail(c, log, apperr.Validationf("File size exceeds the %d MB limit for direct transcription.", limit>>20))
		return
	}

	data, err := readFormFile(file)
	if err != nil {
		utils.Fail(c, log, err)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	res, err := h.transcriber.TranscribeDirect(ctx, transcribe.DirectRequest{
		Audio:    data,
		FileName: file.Filename,
		Mode:     c.PostForm("languageMode"),
	})
	if err != nil {
		utils.Fail(c, log, err)
		return
	}

	resp := directResponse{
		Transcription: res.Transcript,
		Confidence:    res.Confidence,
		Language:      res.Language,
		TotalWords:    res.TotalWords,
		Segments:      res.SegmentCount,
		Model:         res.Model,
		Message:       res.Message,
	}
	if res.Duration != nil {
		resp.Duration = *res.Duration
	}
	c.JSON(http.StatusOK, resp)
}

// limitBody caps the request body at the file ceiling plus multipart framing.
func limitBody(limit func() int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n := limit(); n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n+multipartSlack)
		}
		c.Next()
	}
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, apperr.Validation("Failed to read the uploaded file.").WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Validation("Failed to read the uploaded file.").WithCause(err)
	}
	return data, nil
}

func formFileError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return apperr.Validation("No audio file provided.").WithCause(err)
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		return apperr.Validationf("File size exceeds the %d MB limit.", limit>>20).WithCause(err)
	default:
		return apperr.Validation("Invalid multipart form.").WithCause(err)
	}
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, jsonFieldName(fe.Field()))
		}
		return apperr.Validationf("Missing required field: %s", strings.Join(fields, ", ")).WithCause(err)
	}
	return apperr.Validation("Invalid JSON body.").WithCause(err)
}

func jsonFieldName(field string) string {
	switch field {
	case "GCSURI":
		return "gcsUri"
	case "AudioFormat":
		return "audioFormat"
	default:
		return field
	}
}
