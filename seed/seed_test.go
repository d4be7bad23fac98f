package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"imagegallery/logger"
	"imagegallery/models"
	"imagegallery/storetest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			ID:          fmt.Sprint(i),
			Author:      "Author " + fmt.Sprint(i),
			Width:       5000,
			Height:      3333,
			URL:         "https://unsplash.com/photos/" + fmt.Sprint(i),
			DownloadURL: "https://picsum.photos/id/" + fmt.Sprint(i) + "/5000/3333",
		}
	}
	return entries
}

func picsumServer(t *testing.T, entries []Entry, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "/v2/list", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOptions() Options {
	return Options{
		Limit:       100,
		DownloadURL: "https://picsum.photos/id/{id}/400/400",
		Attempts:    3,
		Backoff:     time.Millisecond,
	}
}

func TestRunSeedsEmptyCatalog(t *testing.T) {
	srv := picsumServer(t, listing(100), nil)
	catalog := storetest.NewImages()
	seeder := New(catalog, NewHTTPSource(srv.URL+"/v2/list", time.Second), testOptions(), logger.Discard())

	res, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Fetched: 100, Inserted: 100}, res)

	count, err := catalog.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 100, count)

	image, err := catalog.FindByExternalID(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Author 42", image.Author)
	assert.Equal(t, 5000, image.Width)
	assert.Equal(t, "https://unsplash.com/photos/42", image.URL)
	assert.Equal(t, "https://picsum.photos/id/42/400/400", image.DownloadURL)
	assert.NotNil(t, image.Likes)
	assert.Empty(t, image.Likes)
}

func TestRunSkipsNonEmptyCatalog(t *testing.T) {
	var hits atomic.Int32
	srv := picsumServer(t, listing(100), &hits)
	catalog := storetest.NewImages()
	catalog.Add(models.Image{ExternalID: "existing"})
	seeder := New(catalog, NewHTTPSource(srv.URL+"/v2/list", time.Second), testOptions(), logger.Discard())

	res, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Zero(t, hits.Load())
}

func TestRunSkipsDuplicateAndInvalidEntries(t *testing.T) {
	entries := listing(3)
	entries = append(entries, entries[0], Entry{Author: "no id"})
	srv := picsumServer(t, entries, nil)
	catalog := storetest.NewImages()
	seeder := New(catalog, NewHTTPSource(srv.URL+"/v2/list", time.Second), testOptions(), logger.Discard())

	res, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Fetched: 5, Inserted: 3, Invalid: 1}, res)
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := NewHTTPSource(srv.URL, time.Second).Fetch(context.Background(), 10)
		assert.ErrorContains(t, err, "unexpected status 502")
	})
	t.Run("body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()
		_, err := NewHTTPSource(srv.URL, time.Second).Fetch(context.Background(), 10)
		assert.ErrorContains(t, err, "decode listing")
	})
	t.Run("truncates to limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(listing(20))
		}))
		defer srv.Close()
		entries, err := NewHTTPSource(srv.URL, time.Second).Fetch(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, entries, 5)
	})
}

type flakySource struct {
	failures int
	calls    int
	entries  []Entry
}

func (f *flakySource) Fetch(context.Context, int) ([]Entry, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return f.entries, nil
}

func TestRunWithRetryRecovers(t *testing.T) {
	source := &flakySource{failures: 2, entries: listing(10)}
	catalog := storetest.NewImages()

	New(catalog, source, testOptions(), logger.Discard()).RunWithRetry(context.Background())

	assert.Equal(t, 3, source.calls)
	count, err := catalog.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, count)
}

func TestRunWithRetryGivesUp(t *testing.T) {
	source := &flakySource{failures: 10}
	catalog := storetest.NewImages()

	New(catalog, source, testOptions(), logger.Discard()).RunWithRetry(context.Background())

	assert.Equal(t, 3, source.calls)
	count, err := catalog.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

// failingCatalog fails the insert after the first n successes.
type failingCatalog struct {
	*storetest.Images
	remaining int
}

func (f *failingCatalog) InsertIfAbsent(ctx context.Context, image *models.Image) (bool, error) {
	if f.remaining == 0 {
		return false, storetest.ErrUnavailable
	}
	f.remaining--
	return f.Images.InsertIfAbsent(ctx, image)
}

func TestRunWithRetryCompletesPartialImport(t *testing.T) {
	catalog := &failingCatalog{Images: storetest.NewImages(), remaining: 4}
	source := &flakySource{entries: listing(10)}
	seeder := New(catalog, source, testOptions(), logger.Discard())

	_, err := seeder.Run(context.Background())
	require.ErrorIs(t, err, storetest.ErrUnavailable)

	catalog.remaining = -1
	res, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 6, res.Inserted)

	count, err := catalog.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, count)
}

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Source(t *testing.T) {
	b, err := json.Marshal(listing(4))
	require.NoError(t, err)
	client := &fakeS3{body: string(b)}

	entries, err := NewS3Source(client, "seed-bucket", "listings/picsum.json").Fetch(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, "seed-bucket", client.bucket)
	assert.Equal(t, "listings/picsum.json", client.key)

	client.err = errors.New("AccessDenied")
	_, err = NewS3Source(client, "seed-bucket", "k").Fetch(context.Background(), 100)
	assert.ErrorContains(t, err, "s3://seed-bucket/k")
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(context.Background(), "https://picsum.photos/v2/list", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	for _, raw := range []string{"", "ftp://x/y", "s3://bucket", "s3:///key", "not a url"} {
		_, err := NewSource(context.Background(), raw, time.Second)
		assert.Error(t, err, raw)
	}
}
