package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

// multipartOverhead covers boundaries and part headers on top of file bytes.
const multipartOverhead = 1 << 20

type MediaHandler struct {
	mediaService services.MediaService
}

func NewMediaHandler(mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// POST /api/media/images (multipart: files[], start_order)
func (mh *MediaHandler) UploadImages(c *gin.Context) {
	limit := mh.mediaService.MaxUploadBytes()
	if c.Request.ContentLength > limit+multipartOverhead {
		response.RespondErr(c, payloadTooLarge(limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.RespondErr(c, payloadTooLarge(limit))
			return
		}
		response.RespondErr(c, apierr.Invalid("Envie as imagens no campo files"))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	startOrder := 0
	if v := form.Value["start_order"]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
		startOrder, err = strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil || startOrder < 0 {
			response.RespondErr(c, apierr.Invalid("start_order inválido"))
			return
		}
	}

	files := form.File["files"]
	uploads := make([]services.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			response.RespondErr(c, fmt.Errorf("open upload %q: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			response.RespondErr(c, fmt.Errorf("read upload %q: %w", fh.Filename, err))
			return
		}
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Data: data})
	}

	out, err := mh.mediaService.ProcessUploads(c.Request.Context(), uploads, startOrder)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"images": out})
}

func payloadTooLarge(limit int64) error {
	return apierr.Coded(http.StatusRequestEntityTooLarge, "payload_too_large",
		fmt.Sprintf("Arquivo excede o limite de %d MB", limit>>20), apierr.ErrInvalidArgument)
}
