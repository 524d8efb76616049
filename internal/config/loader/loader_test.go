package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

func TestLoaderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	if err := os.WriteFile(path, []byte("[web]\nport = 80\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := New(pkgconfig.NewLoaderOptions())
	doc, err := l.Load(context.Background(), pkgconfig.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != "[web]\nport = 80\n" {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Location() != path {
		t.Fatalf("expected location %q, got %q", path, doc.Location())
	}
}

func TestLoaderFileErrors(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		src  pkgconfig.Source
		path string
	}{
		{name: "missing", src: pkgconfig.SourceFromFile(filepath.Join(dir, "nope.toml")), path: filepath.Join(dir, "nope.toml")},
		{name: "directory", src: pkgconfig.SourceFromFile(dir), path: dir},
		{name: "empty path", src: pkgconfig.SourceFromFile(""), path: ""},
		{name: "nil source", src: nil, path: ""},
	}

	l := New(pkgconfig.NewLoaderOptions())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Load(context.Background(), tc.src)
			var notFound *pkgconfig.FileNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected FileNotFoundError, got %T (%v)", err, err)
			}
			if notFound.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, notFound.Path)
			}
		})
	}
}

func TestLoaderMissingFileWrapsOSError(t *testing.T) {
	l := New(pkgconfig.NewLoaderOptions())
	_, err := l.Load(context.Background(), pkgconfig.SourceFromFile(filepath.Join(t.TempDir(), "nope.toml")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoaderMissingFileKeepsCallerPath(t *testing.T) {
	path := t.TempDir() + string(filepath.Separator) + "." + string(filepath.Separator) + "nope.toml"

	l := New(pkgconfig.NewLoaderOptions())
	_, err := l.Load(context.Background(), pkgconfig.SourceFromPath(path))
	var notFound *pkgconfig.FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected FileNotFoundError, got %v", err)
	}
	if notFound.Path != path {
		t.Fatalf("expected the path as given %q, got %q", path, notFound.Path)
	}
}

func TestLoaderFS(t *testing.T) {
	files := fstest.MapFS{
		"conf/app.yaml": {Data: []byte("web: {}\n")},
	}

	l := New(pkgconfig.NewLoaderOptions(pkgconfig.WithFileSystem(files)))
	doc, err := l.Load(context.Background(), pkgconfig.SourceFromFS("conf/app.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != "web: {}\n" {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	if _, err := l.Load(context.Background(), pkgconfig.SourceFromFS("missing.yaml")); err == nil {
		t.Fatal("expected error for missing fs entry")
	}

	noFS := New(pkgconfig.NewLoaderOptions())
	if _, err := noFS.Load(context.Background(), pkgconfig.SourceFromFS("conf/app.yaml")); err == nil {
		t.Fatal("expected error without a configured filesystem")
	}
}

func TestLoaderStdin(t *testing.T) {
	l := New(pkgconfig.NewLoaderOptions(pkgconfig.WithStdin(strings.NewReader("[a]\nx = 1\n"))))
	doc, err := l.Load(context.Background(), pkgconfig.SourceFromStdin())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != pkgconfig.StdinLocation {
		t.Fatalf("expected stdin location, got %q", doc.Location())
	}
	if string(doc.Raw()) != "[a]\nx = 1\n" {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
}

func TestLoaderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(pkgconfig.NewLoaderOptions())
	_, err := l.Load(ctx, pkgconfig.SourceFromFile("app.toml"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var notFound *pkgconfig.FileNotFoundError
	if errors.As(err, &notFound) {
		t.Fatal("cancellation should not be reported as a missing file")
	}
}

func TestLoaderHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hosts.toml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("[web]\n"))
	}))
	defer server.Close()

	l := New(pkgconfig.NewLoaderOptions(pkgconfig.WithHTTPClient(server.Client())))
	doc, err := l.Load(context.Background(), pkgconfig.SourceFromURL(server.URL+"/hosts.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != "[web]\n" {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	_, err = l.Load(context.Background(), pkgconfig.SourceFromURL(server.URL+"/missing.toml"))
	var notFound *pkgconfig.FileNotFoundError
	if !errors.As(err, &notFound) || !strings.Contains(notFound.Err.Error(), "404") {
		t.Fatalf("expected FileNotFoundError carrying the status, got %v", err)
	}
}

func TestLoaderHTTPDisabled(t *testing.T) {
	l := New(pkgconfig.NewLoaderOptions())
	_, err := l.Load(context.Background(), pkgconfig.SourceFromURL("http://127.0.0.1:1/hosts.toml"))
	var notFound *pkgconfig.FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected FileNotFoundError, got %v", err)
	}
	if !strings.Contains(err.Error(), "http://127.0.0.1:1/hosts.toml") {
		t.Fatalf("expected the URL in the message, got %q", err.Error())
	}
}
