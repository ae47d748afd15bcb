// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-engine/pkg/types"
)

func testConfig(dir string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig:    types.HTTPConfig{UserAgent: "price-engine/0.1"},
		DownloadDelay: 1, // effectively unpaced in tests
		BulletinsDir:  dir,
	}
}

func TestFetchAllDownloadsAndResumes(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "price-engine/0.1", r.Header.Get("User-Agent"))
		io.WriteString(w, "%PDF-1.4 fake bulletin")
	}))
	defer srv.Close()

	dir := t.TempDir()
	links := []types.BulletinLink{
		{URL: srv.URL + "/a.pdf", Type: "daily", Date: "2026-02-08"},
		{URL: srv.URL + "/b.pdf", Type: "daily", Date: "2026-02-07"},
	}

	result, err := FetchAll(context.Background(), srv.Client(), links, testConfig(dir), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Downloaded: 2}, result)
	assert.False(t, result.HasFailures())

	data, err := os.ReadFile(filepath.Join(dir, "raw", "daily-2026-02-08.pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")

	// A second run finds both files cached and stays off the network.
	before := atomic.LoadInt32(&hits)
	result, err = FetchAll(context.Background(), srv.Client(), links, testConfig(dir), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Cached: 2}, result)
	assert.Equal(t, before, atomic.LoadInt32(&hits))
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "%PDF-1.4")
	}))
	defer srv.Close()

	dir := t.TempDir()
	links := []types.BulletinLink{
		{URL: srv.URL + "/missing.pdf", Type: "daily", Date: "2026-02-06"},
		{URL: srv.URL + "/ok.pdf", Type: "daily", Date: "2026-02-07"},
	}

	var progress strings.Builder
	result, err := FetchAll(context.Background(), srv.Client(), links, testConfig(dir), &progress)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Downloaded: 1, Failed: 1}, result)
	assert.True(t, result.HasFailures())
	assert.Contains(t, progress.String(), "failed: daily-2026-02-06.pdf")

	// The failed download leaves no truncated file behind.
	_, statErr := os.Stat(filepath.Join(dir, "raw", "daily-2026-02-06.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchAllEmptyCachedFileRedownloaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "%PDF-1.4")
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "raw"), 0o755))
	empty := filepath.Join(dir, "raw", "daily-2026-02-08.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	links := []types.BulletinLink{{URL: srv.URL + "/a.pdf", Type: "daily", Date: "2026-02-08"}}
	result, err := FetchAll(context.Background(), srv.Client(), links, testConfig(dir), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Downloaded: 1}, result)

	info, err := os.Stat(empty)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		link types.BulletinLink
		want string
	}{
		{
			"dated daily",
			types.BulletinLink{URL: "https://x/Daily-Price-Index.pdf", Type: "daily", Date: "2026-02-08"},
			"daily-2026-02-08.pdf",
		},
		{
			"undated keeps basename",
			types.BulletinLink{URL: "https://x/uploads/Weekly-Average.pdf", Type: "weekly"},
			"Weekly-Average.pdf",
		},
		{
			"encoded spaces cleaned",
			types.BulletinLink{URL: "https://x/Price%20Watch%20List.pdf", Type: "other"},
			"Price-Watch-List.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.link))
		})
	}
}
