package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

type UploadHandler struct {
	uploader services.Uploader
	logger   *zap.Logger
}

// NewUploadHandler accepts a nil uploader; uploads then answer 503.
func NewUploadHandler(uploader services.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

type UploadResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	URL     string                  `json:"url,omitempty"`
	Data    *services.UploadedAsset `json:"data,omitempty"`
}

// UploadFile stores the multipart "file" part in the optional "folder".
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeFail(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		writeFail(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "No file provided")
		return
	}
	file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = services.DefaultUploadFolder
	}

	asset, err := h.uploader.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		writeError(w, h.logger, err, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     asset.URL,
		Data:    asset,
	})
}
