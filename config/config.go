package config

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/models"
)

// Config holds the project config values
type Config struct {
	URL           string
	DatabaseName  string
	BaseURL       string
	Port          string
	JWTSecret     string
	IntrospectURL string
	UploadDir     string
	PythonBin     string
	DiseaseScript string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:           os.Getenv("DB_URI"),
		DatabaseName:  os.Getenv("DB_NAME"),
		BaseURL:       os.Getenv("BASE_URL"),
		Port:          os.Getenv("PORT"),
		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"),
		IntrospectURL: os.Getenv("AUTH_INTROSPECT_URL"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PythonBin:     getEnv("PYTHON_BIN", "python3"),
		DiseaseScript: os.Getenv("DISEASE_SCRIPT"),
	}

}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}
