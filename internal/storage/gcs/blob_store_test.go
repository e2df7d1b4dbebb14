package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

type upload struct {
	name     string
	query    map[string]string
	metadata map[string]any
	body     string
}

// newTestStore points a client at a fake of the GCS JSON upload API.
func newTestStore(t *testing.T, status int, prefix string) (*PageStore, *[]upload) {
	t.Helper()
	var uploads []upload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/upload/storage/v1/b/site-bucket/o")
		up := upload{query: map[string]string{}}
		for k := range r.URL.Query() {
			up.query[k] = r.URL.Query().Get(k)
		}
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(part).Decode(&up.metadata))
		part, err = reader.NextPart()
		require.NoError(t, err)
		raw, err := io.ReadAll(part)
		require.NoError(t, err)
		up.body = string(raw)
		up.name, _ = up.metadata["name"].(string)
		uploads = append(uploads, up)

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintln(w, `{"error":{"code":`+fmt.Sprint(status)+`,"message":"failed"}}`)
			return
		}
		fmt.Fprintln(w, `{"name":"`+up.name+`","bucket":"site-bucket"}`)
	}))
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, Config{Bucket: "site-bucket", Prefix: prefix})
	require.NoError(t, err)
	return store, &uploads
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil, Config{Bucket: "b"})
	assert.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()
	_, err = New(client, Config{})
	assert.Error(t, err)
}

func TestPutObjectUpsertsWithHeaders(t *testing.T) {
	store, uploads := newTestStore(t, http.StatusOK, "/static-pages/")

	uri, err := store.PutObject(context.Background(), "catalog-banknote-abc123.html", []byte("<html>ok</html>"), snapshot.PutOptions{
		ContentType:  snapshot.ContentTypeHTML,
		CacheControl: snapshot.DefaultCacheControl,
		Upsert:       true,
		Metadata:     map[string]string{"sha256": "deadbeef"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gs://site-bucket/static-pages/catalog-banknote-abc123.html", uri)

	require.Len(t, *uploads, 1)
	up := (*uploads)[0]
	assert.Equal(t, "static-pages/catalog-banknote-abc123.html", up.name)
	assert.Equal(t, "<html>ok</html>", up.body)
	assert.Equal(t, snapshot.ContentTypeHTML, up.metadata["contentType"])
	assert.Equal(t, snapshot.DefaultCacheControl, up.metadata["cacheControl"])
	assert.Equal(t, map[string]any{"sha256": "deadbeef"}, up.metadata["metadata"])
	assert.NotContains(t, up.query, "ifGenerationMatch")
}

func TestPutObjectCreateOnly(t *testing.T) {
	store, uploads := newTestStore(t, http.StatusPreconditionFailed, "")

	_, err := store.PutObject(context.Background(), "index.html", []byte("x"), snapshot.PutOptions{})
	require.ErrorIs(t, err, snapshot.ErrPageExists)
	require.Len(t, *uploads, 1)
	assert.Equal(t, "0", (*uploads)[0].query["ifGenerationMatch"])
}

func TestPutObjectServerError(t *testing.T) {
	store, _ := newTestStore(t, http.StatusInternalServerError, "")

	_, err := store.PutObject(context.Background(), "index.html", []byte("x"), snapshot.PutOptions{Upsert: true})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "index.html"))
	assert.NotErrorIs(t, err, snapshot.ErrPageExists)
}

func TestPutObjectRequiresName(t *testing.T) {
	store, _ := newTestStore(t, http.StatusOK, "")
	_, err := store.PutObject(context.Background(), " ", nil, snapshot.PutOptions{})
	require.Error(t, err)
}
