package collector

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"copysmith/pkg/config"
	"copysmith/pkg/tracker"
)

func testCollector(t *testing.T) *Collector {
	t.Helper()
	return New(config.CollectorConfig{
		LinkTokenBudget: 100, // 400-char budget
		MaxImageBytes:   1024,
		FetchTimeoutSec: 2,
	})
}

func TestExtractURLs(t *testing.T) {
	text := `See https://example.com/a and http://example.com/b.
Also https://example.com/a again, and (https://example.com/c) in parens.`

	got := ExtractURLs(text)
	want := []string{"https://example.com/a", "http://example.com/b", "https://example.com/c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractURLs = %v, want %v", got, want)
	}
}

func TestExtractURLsNone(t *testing.T) {
	if urls := ExtractURLs("no links in here"); urls != nil {
		t.Errorf("expected nil, got %v", urls)
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<html><head><style>body { color: red }</style>
<script>alert("hi")</script></head>
<body><h1>Product   Launch</h1><p>Fast &amp; simple &mdash; really.</p></body></html>`

	got := HTMLToText(html)
	want := "Product Launch Fast & simple - really."
	if got != want {
		t.Errorf("HTMLToText = %q, want %q", got, want)
	}
}

func TestFetchLinksSuccessAndFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>Launch details here</p></body></html>"))
		case "/missing":
			http.NotFound(w, r)
		case "/binary":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte{0x00, 0x01})
		}
	}))
	defer server.Close()

	c := testCollector(t)
	results := c.FetchLinks(context.Background(),
		[]string{server.URL + "/good", server.URL + "/missing", server.URL + "/binary"})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Error != "" || results[0].Content != "Launch details here" {
		t.Errorf("good link: %+v", results[0])
	}
	if results[1].Error == "" || !strings.Contains(results[1].Error, "404") {
		t.Errorf("missing link should record HTTP 404, got %+v", results[1])
	}
	if results[2].Error == "" {
		t.Errorf("binary link should record content-type error, got %+v", results[2])
	}
}

func TestFetchLinksTruncation(t *testing.T) {
	long := strings.Repeat("word ", 200) // 1000 chars, over the 400-char budget
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(long))
	}))
	defer server.Close()

	c := testCollector(t)
	results := c.FetchLinks(context.Background(), []string{server.URL})

	if !results[0].Truncated {
		t.Error("content over budget should be flagged truncated")
	}
	if len(results[0].Content) != 400 {
		t.Errorf("content length = %d, want 400", len(results[0].Content))
	}
}

func TestFetchLinksTimeoutDoesNotStallBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(5 * time.Second)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("quick"))
	}))
	defer server.Close()

	c := New(config.CollectorConfig{LinkTokenBudget: 100, MaxImageBytes: 1024, FetchTimeoutSec: 1})

	start := time.Now()
	results := c.FetchLinks(context.Background(), []string{server.URL + "/slow", server.URL + "/fast"})
	elapsed := time.Since(start)

	if elapsed > 3*time.Second {
		t.Errorf("batch took %v, per-URL timeout not independent", elapsed)
	}
	if results[0].Error == "" {
		t.Error("slow URL should record a timeout error")
	}
	if results[1].Content != "quick" {
		t.Errorf("fast URL content = %q", results[1].Content)
	}
}

func TestDownloadImages(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/huge.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(make([]byte, 2048)) // over the 1024 limit
		case "/gone.png":
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testCollector(t)
	attachments := []tracker.Attachment{
		{URL: server.URL + "/logo.png", Title: "Logo"},
		{URL: server.URL + "/huge.jpg", Title: "Huge"},
		{URL: server.URL + "/gone.png", Title: "Gone"},
		{URL: server.URL + "/doc.pdf", Title: "Not an image"},
	}

	images := c.DownloadImages(context.Background(), attachments)
	if len(images) != 1 {
		t.Fatalf("got %d images, want 1 (oversized, missing, and non-image skipped)", len(images))
	}
	if images[0].Title != "Logo" || images[0].MIMEType != "image/png" {
		t.Errorf("image = %+v", images[0])
	}
	decoded, err := base64.StdEncoding.DecodeString(images[0].Data)
	if err != nil || len(decoded) != len(pngBytes) {
		t.Errorf("bad base64 payload: err=%v len=%d", err, len(decoded))
	}
	if images[0].Size != len(pngBytes) {
		t.Errorf("size = %d, want %d", images[0].Size, len(pngBytes))
	}
}

func TestImageMIMEForURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/a.PNG", "image/png"},
		{"https://cdn.example.com/a.jpeg?sig=abc", "image/jpeg"},
		{"https://cdn.example.com/a.webp#frag", "image/webp"},
		{"https://cdn.example.com/a.pdf", ""},
		{"https://cdn.example.com/noext", ""},
	}
	for _, tc := range cases {
		if got := imageMIMEForURL(tc.url); got != tc.want {
			t.Errorf("imageMIMEForURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestCollectRunsBothBatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pic.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{1, 2, 3})
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("page text"))
	}))
	defer server.Close()

	c := testCollector(t)
	description := "Background: " + server.URL + "/page"
	attachments := []tracker.Attachment{{URL: server.URL + "/pic.png", Title: "Pic"}}

	links, images := c.Collect(context.Background(), description, attachments)
	if len(links) != 1 || links[0].Content != "page text" {
		t.Errorf("links = %+v", links)
	}
	if len(images) != 1 || images[0].Title != "Pic" {
		t.Errorf("images = %+v", images)
	}
}
