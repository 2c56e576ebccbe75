package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
		ok     bool
	}{
		{
			name:   "bare object",
			stdout: `{"disease": "blister blight", "confidence": 0.93}`,
			want:   `{"disease": "blister blight", "confidence": 0.93}`,
			ok:     true,
		},
		{
			name:   "framework banner before result",
			stdout: "Using TensorFlow backend.\n1/1 [==============================] - 0s\n{\"disease\": \"healthy\"}",
			want:   `{"disease": "healthy"}`,
			ok:     true,
		},
		{
			name:   "trailing progress output",
			stdout: "{\"disease\": \"red rust\"}\ndone in 1.2s\n",
			want:   `{"disease": "red rust"}`,
			ok:     true,
		},
		{
			name:   "nested object",
			stdout: "loading model\n{\"result\": {\"disease\": \"grey blight\"}, \"confidence\": 0.7}\n",
			want:   `{"result": {"disease": "grey blight"}, "confidence": 0.7}`,
			ok:     true,
		},
		{
			name:   "no json at all",
			stdout: "Traceback (most recent call last):\n  ValueError\n",
			ok:     false,
		},
		{
			name:   "empty output",
			stdout: "",
			ok:     false,
		},
		{
			name:   "brace order reversed",
			stdout: "} nonsense {",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.stdout)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
