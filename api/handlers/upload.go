package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxUploadBytes caps multipart uploads (chat files and detection images) at 5MB.
const maxUploadBytes = 5 << 20

// chatFileMIMEs are the sniffed content types accepted for chat file messages.
var chatFileMIMEs = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// imageMIMEs are the sniffed content types accepted for disease detection.
var imageMIMEs = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// saveUpload validates and stores one multipart file under uploadDir. The
// stored name is a fresh uuid, the caller-supplied name is only returned for
// display. Content type is sniffed from the payload, never trusted from the
// request.
func saveUpload(r *http.Request, field, uploadDir string, allowed map[string]string) (storedPath, originalName string, size int64, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err = r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", 0, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", 0, fmt.Errorf("missing %q form file: %w", field, err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", "", 0, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := allowed[contentType]
	if !ok {
		return "", "", 0, fmt.Errorf("unsupported file type %s", contentType)
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return "", "", 0, fmt.Errorf("failed to rewind upload: %w", err)
	}

	if err = os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	size, err = io.Copy(dst, file)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to write upload file: %w", err)
	}

	return "/uploads/" + name, header.Filename, size, nil
}
