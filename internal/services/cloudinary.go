package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

const (
	// DefaultUploadFolder is used when the caller names no folder.
	DefaultUploadFolder = "portfolio"
	// MaxUploadSize caps a single uploaded asset.
	MaxUploadSize = 10 << 20
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// Uploader stores a portfolio asset and returns its public URL.
type Uploader interface {
	UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*UploadedAsset, error)
}

type UploadedAsset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Format   string `json:"format,omitempty"`
	Bytes    int    `json:"bytes"`
}

// CloudinaryService uploads project images, certificates and resumes.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

func (s *CloudinaryService) upload(ctx context.Context, data []byte, folder string) (*UploadedAsset, error) {
	if folder == "" {
		folder = DefaultUploadFolder
	}
	res, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, apperr.External("cloudinary", err)
	}
	if res.Error.Message != "" {
		return nil, apperr.External("cloudinary", fmt.Errorf("%s", res.Error.Message))
	}
	return &UploadedAsset{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Format:   res.Format,
		Bytes:    res.Bytes,
	}, nil
}

// UploadFileFromHeader validates size and content type, then uploads.
func (s *CloudinaryService) UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*UploadedAsset, error) {
	data, err := ReadUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, data, folder)
}

// ReadUpload reads a multipart file, rejecting oversize or unsupported files.
func ReadUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > MaxUploadSize {
		return nil, apperr.Invalid("file", "File exceeds the 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, apperr.Invalid("file", "File exceeds the 10MB limit")
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(http.DetectContentType(data), ";")[0]))
	if contentType == "text/xml" || contentType == "text/plain" {
		// DetectContentType cannot identify SVG; trust the declared type for it.
		if strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/svg+xml") {
			contentType = "image/svg+xml"
		}
	}
	if !allowedUploadTypes[contentType] {
		return nil, apperr.Invalid("file", "Unsupported file type")
	}
	return data, nil
}
