package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

// Loader implements pkgconfig.Loader by delegating to file, fs.FS, HTTP or
// stdin strategies. Construction helpers live in the top-level tmptoml
// package.
type Loader struct {
	fs        fs.FS
	stdin     io.Reader
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// Ensure the implementation satisfies the public interface.
var _ pkgconfig.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgconfig.LoaderOptions) pkgconfig.Loader {
	stdin := options.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		stdin:     stdin,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source and wraps it in a
// Document. Every read failure is reported as *pkgconfig.FileNotFoundError.
func (l *Loader) Load(ctx context.Context, src pkgconfig.Source) (pkgconfig.Document, error) {
	if src == nil {
		return pkgconfig.Document{}, &pkgconfig.FileNotFoundError{Err: errors.New("config loader: source is nil")}
	}
	if err := ctx.Err(); err != nil {
		return pkgconfig.Document{}, err
	}

	location := src.Location()

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgconfig.SourceKindFile:
		data, err = loadFile(ctx, location)
	case pkgconfig.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, location)
	case pkgconfig.SourceKindURL:
		if !l.allowHTTP {
			err = errors.New("config loader: http support disabled")
			break
		}
		data, err = loadHTTP(ctx, l.http, location, l.timeout)
	case pkgconfig.SourceKindStdin:
		data, err = loadReader(ctx, l.stdin)
	default:
		err = errors.New("config loader: unsupported source kind")
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return pkgconfig.Document{}, err
		}
		return pkgconfig.Document{}, &pkgconfig.FileNotFoundError{Path: location, Err: err}
	}

	return pkgconfig.NewDocument(src, data)
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("config loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func loadReader(ctx context.Context, r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, errors.New("config loader: stdin is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
