package dumps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/rime-zhwiki/internal/models"
	"github.com/fyerfyer/rime-zhwiki/pkg/storage"
)

const indexPage = `<html><head><title>Index of /zhwiki/</title></head><body>
<h1>Index of /zhwiki/</h1><hr><pre><a href="../">../</a>
<a href="20240101/">20240101/</a>                                          02-Jan-2024 01:31    -
<a href="20240120/">20240120/</a>                                          21-Jan-2024 01:32    -
<a href="20231220/">20231220/</a>                                          21-Dec-2023 01:31    -
<a href="latest/">latest/</a>                                              21-Jan-2024 01:32    -
</pre><hr></body></html>`

type fixture struct {
	server    *httptest.Server
	client    *Client
	store     *storage.LocalStorage
	downloads atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/zhwiki/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/zhwiki/":
			fmt.Fprint(w, indexPage)
		case strings.HasSuffix(r.URL.Path, ".gz"):
			f.downloads.Add(1)
			fmt.Fprint(w, "gzip-bytes")
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/empty/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="latest/">latest/</a></body></html>`)
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	f.store = store

	cfg := DefaultConfig()
	cfg.IndexURL = f.server.URL + "/{cate}/"
	cfg.FileURL = f.server.URL + "/{cate}/{date}/{cate}-{date}-all-titles-in-ns0.gz"
	f.client = NewClient(cfg, store)
	return f
}

func TestFetchVersion(t *testing.T) {
	f := newFixture(t)

	version, err := f.client.FetchVersion(context.Background(), "zhwiki")
	require.NoError(t, err)
	assert.Equal(t, "20240120", version)
}

func TestFetchVersionNoVersion(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.FetchVersion(context.Background(), "empty")
	assert.ErrorIs(t, err, models.ErrNoVersion)
	assert.True(t, models.IsKind(err, models.KindTransientExternal))
}

func TestFetchVersionHTTPError(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.FetchVersion(context.Background(), "broken")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.True(t, models.IsKind(err, models.KindTransientExternal))
}

func TestDownload(t *testing.T) {
	f := newFixture(t)

	info, err := f.client.Download(context.Background(), "zhwiki", "20240120")
	require.NoError(t, err)
	assert.Equal(t, "zhwiki-20240120-all-titles-in-ns0.gz", info.Name)
	assert.Equal(t, int64(len("gzip-bytes")), info.Size)

	r, err := f.store.Get(info.Name)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	r.Close()
	require.NoError(t, err)
	assert.Equal(t, "gzip-bytes", string(data))

	// 已存在的文件直接复用
	again, err := f.client.Download(context.Background(), "zhwiki", "20240120")
	require.NoError(t, err)
	assert.Equal(t, info.Path, again.Path)
	assert.Equal(t, int32(1), f.downloads.Load())
}

func TestDownloadNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Download(context.Background(), "broken", "20240120")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindTransientExternal))

	ok, err := f.store.Exists(f.client.FileName("broken", "20240120"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDownloadCanceled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.client.Download(ctx, "zhwiki", "20240120")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLatest(t *testing.T) {
	assert.Equal(t, "20240120", Latest([]string{"20240101", "20240120", "20231220"}))
	assert.Equal(t, "100", Latest([]string{"99", "100"}))
	assert.Equal(t, "", Latest(nil))
}

func TestURLs(t *testing.T) {
	c := NewClient(DefaultConfig(), nil)
	assert.Equal(t, "https://dumps.wikimedia.org/zhwiki/", c.IndexURL("zhwiki"))
	assert.Equal(t,
		"https://dumps.wikimedia.org/zhwiktionary/20240101/zhwiktionary-20240101-all-titles-in-ns0.gz",
		c.FileURL("zhwiktionary", "20240101"))
	assert.Equal(t, "zhwiktionary-20240101-all-titles-in-ns0.gz", c.FileName("zhwiktionary", "20240101"))
}
