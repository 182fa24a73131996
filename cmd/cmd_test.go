package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpFirst(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", nil, false},
		{"short help", []string{"-h"}, true},
		{"long help", []string{"--help", "http://example.com/a"}, true},
		{"help after url", []string{"http://example.com/a", "-h"}, false},
		{"directory flag", []string{"-d", "out", "http://example.com/a"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, helpFirst(tc.args))
		})
	}
}

func TestExecuteHelpOnly(t *testing.T) {
	defer viper.Reset()
	assert.NoError(t, Execute(context.Background(), []string{"--help"}))
}

func TestExecuteHelpStillDownloads(t *testing.T) {
	defer viper.Reset()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5")
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte("hello"))
		}
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "nested")
	err := Execute(context.Background(), []string{"-h", "-d", dir, server.URL + "/greeting"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "greeting"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestExecuteProbeFailureReturnsError(t *testing.T) {
	defer viper.Reset()
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL + "/gone"
	dead.Close()

	err := Execute(context.Background(), []string{"-d", t.TempDir(), deadURL})
	assert.Error(t, err)
}
