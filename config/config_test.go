package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "ceylonara-test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "ceylonara-test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("UPLOAD_DIR")
	os.Unsetenv("PYTHON_BIN")
	conf := New()

	assert.Equal(t, "uploads", conf.UploadDir)
	assert.Equal(t, "python3", conf.PythonBin)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "error it borked")
	assert.Contains(t, rr.Body.String(), "bad request")
}
