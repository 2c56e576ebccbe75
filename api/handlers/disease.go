package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/config"
)

// detectionTimeout bounds one run of the detection script.
const detectionTimeout = 60 * time.Second

// Disease exported for testing purposes
type Disease struct {
	PythonBin  string
	ScriptPath string
	UploadDir  string
}

// extractJSONObject pulls the outermost JSON object out of a noisy stdout
// stream. ML scripts print progress lines and framework banners around the
// result, so everything before the first '{' and after the last '}' is
// discarded.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// DetectHandler runs the leaf image through the detection script and relays
// its verdict. The image arrives as multipart form data under the "image"
// field and is kept on disk afterwards for operator review.
func (d Disease) DetectHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestIdentity(w, r); !ok {
		return
	}

	imagePath, _, _, err := saveUpload(r, "image", d.UploadDir, imageMIMEs)
	if err != nil {
		config.ErrorStatus("failed to store image", http.StatusBadRequest, w, err)
		return
	}
	// saveUpload returns the public /uploads/ path; the script needs the disk path
	diskPath := filepath.Join(d.UploadDir, filepath.Base(imagePath))

	ctx, cancel := context.WithTimeout(r.Context(), detectionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.PythonBin, d.ScriptPath, diskPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		zap.S().Errorw("detection script failed",
			"error", err,
			"stdout", stdout.String(),
			"stderr", stderr.String(),
		)
		config.ErrorStatus("detection script failed", http.StatusInternalServerError, w, err)
		return
	}

	raw, ok := extractJSONObject(stdout.String())
	if !ok {
		zap.S().Errorw("detection script produced no JSON", "stdout", stdout.String())
		config.ErrorStatus("detection script produced no result", http.StatusInternalServerError, w, os.ErrInvalid)
		return
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		config.ErrorStatus("failed to parse detection result", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"success": true,
		"result":  result,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal detection result", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
