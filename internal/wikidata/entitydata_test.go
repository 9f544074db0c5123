package wikidata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/suruext/internal/model"
)

const q144 = `{"entities":{"Q144":{"id":"Q144","sitelinks":{
  "svwiki":{"site":"svwiki","title":"Hund","url":"https://sv.wikipedia.org/wiki/Hund"},
  "fiwiki":{"site":"fiwiki","title":"Koira","url":"https://fi.wikipedia.org/wiki/Koira"},
  "dewiki":{"site":"dewiki","title":"Haushund","url":"https://de.wikipedia.org/wiki/Haushund"},
  "frwiki":{"site":"frwiki","title":"Chien","url":"https://fr.wikipedia.org/wiki/Chien"}
}}}}`

func entityServer(t *testing.T, hits *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(delay)
		switch r.URL.Path {
		case "/Special:EntityData/Q144.json":
			io.WriteString(w, q144) //nolint:errcheck // test server
		case "/Special:EntityData/Q1.json":
			io.WriteString(w, `{"entities":{"Q1":{"id":"Q1"}}}`) //nolint:errcheck // test server
		case "/Special:EntityData/Q2.json":
			io.WriteString(w, `{"entities":{}}`) //nolint:errcheck // test server
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEntityClientSitelinks(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := entityServer(t, &hits, 0)
	c := NewEntityClient(srv.Client(), srv.URL+"/Special:EntityData/", nil)

	t.Run("sv fi en are picked and others counted", func(t *testing.T) {
		t.Parallel()
		got, err := c.Sitelinks(context.Background(), "http://www.wikidata.org/entity/Q144")
		if err != nil {
			t.Fatal(err)
		}
		want := &model.Sitelinks{
			SV:         &model.Sitelink{Title: "Hund", URL: "https://sv.wikipedia.org/wiki/Hund"},
			FI:         &model.Sitelink{Title: "Koira", URL: "https://fi.wikipedia.org/wiki/Koira"},
			OtherCount: 2,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Sitelinks() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("entity without sitelinks is nil", func(t *testing.T) {
		t.Parallel()
		got, err := c.Sitelinks(context.Background(), "Q1")
		if err != nil || got != nil {
			t.Errorf("Sitelinks(Q1) = %+v, %v", got, err)
		}
	})

	t.Run("missing entity is nil", func(t *testing.T) {
		t.Parallel()
		got, err := c.Sitelinks(context.Background(), "Q2")
		if err != nil || got != nil {
			t.Errorf("Sitelinks(Q2) = %+v, %v", got, err)
		}
	})

	t.Run("empty id makes no request", func(t *testing.T) {
		t.Parallel()
		got, err := c.Sitelinks(context.Background(), "")
		if err != nil || got != nil {
			t.Errorf("Sitelinks(\"\") = %+v, %v", got, err)
		}
	})

	t.Run("http failure is a status error", func(t *testing.T) {
		t.Parallel()
		_, err := c.Sitelinks(context.Background(), "Q404")
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
			t.Errorf("error = %v", err)
		}
	})
}

func TestEntityClientSharesConcurrentRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := entityServer(t, &hits, 50*time.Millisecond)
	c := NewEntityClient(srv.Client(), srv.URL+"/Special:EntityData", nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Sitelinks(context.Background(), "Q144"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1", hits.Load())
	}
}

func TestEntityClientCancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		started <- struct{}{}
		<-release
		io.WriteString(w, q144) //nolint:errcheck // test server
	}))
	t.Cleanup(srv.Close)
	c := NewEntityClient(srv.Client(), srv.URL+"/Special:EntityData", nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Sitelinks(ctx, "Q144")
		firstErr <- err
	}()
	<-started

	type result struct {
		links *model.Sitelinks
		err   error
	}
	second := make(chan result, 1)
	go func() {
		links, err := c.Sitelinks(context.Background(), "Q144")
		second <- result{links, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller error = %v, want context.Canceled", err)
	}
	close(release)

	got := <-second
	if got.err != nil {
		t.Fatalf("second caller error = %v", got.err)
	}
	if got.links == nil || got.links.SV == nil || got.links.SV.Title != "Hund" {
		t.Errorf("second caller links = %+v", got.links)
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1", hits.Load())
	}
}

func TestFetchSitelinks(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := entityServer(t, &hits, 0)
	c := NewEntityClient(srv.Client(), srv.URL+"/Special:EntityData", nil)

	got := FetchSitelinks(context.Background(), c, []string{"Q144", "Q1", "Q404"}, 2, nil)
	if len(got) != 1 || got["Q144"] == nil {
		t.Errorf("FetchSitelinks() = %+v", got)
	}
}
