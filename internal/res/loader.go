package res

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a resource cannot be located locally.
var ErrNotFound = errors.New("resource not found")

// ErrTooLarge is returned when a resource exceeds the loader's size limit.
var ErrTooLarge = errors.New("resource too large")

// DefaultMaxBytes caps a single resource at 32 MiB
const DefaultMaxBytes = 32 << 20

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is an image resource
	ResourceTypeImage
	// ResourceTypeCSS is a CSS resource
	ResourceTypeCSS
	// ResourceTypeHTML is an HTML document
	ResourceTypeHTML
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader resolves and fetches the stylesheets, images and documents
// referenced by the markup being rasterized.
type Loader struct {
	// BaseURL is the file path or URL relative references resolve against
	BaseURL string
	// MaxBytes caps the size of any single resource; zero means DefaultMaxBytes
	MaxBytes int64

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string
	client      *http.Client
	logger      *slog.Logger
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL:  baseURL,
		MaxBytes: DefaultMaxBytes,
		cache:    make(map[string]*Resource),
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}
}

// SetLogger replaces the loader's logger
func (l *Loader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// SetHTTPClient replaces the client used for remote resources
func (l *Loader) SetHTTPClient(c *http.Client) {
	if c != nil {
		l.client = c
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL, data URL or file path
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	l.cacheLock.RLock()
	if r, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return r, nil
	}
	l.cacheLock.RUnlock()

	var (
		r   *Resource
		err error
	)
	if strings.HasPrefix(ref, "data:") {
		r, err = parseDataURL(ref)
	} else {
		var resolved string
		resolved, err = l.resolveURL(ref)
		if err != nil {
			return nil, err
		}
		if isRemote(resolved) {
			r, err = l.loadRemote(ctx, resolved)
		} else {
			r, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("resource loaded", "ref", shorten(ref), "type", r.MimeType, "bytes", len(r.Data))

	l.cacheLock.Lock()
	l.cache[ref] = r
	l.cacheLock.Unlock()
	return r, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func shorten(s string) string {
	if len(s) > 64 {
		return s[:61] + "..."
	}
	return s
}

// resolveURL resolves a reference against the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}

	if !isRemote(l.BaseURL) {
		if l.BaseURL == "" {
			return ref, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", l.BaseURL, err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) limit() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

// readLimited reads at most the loader's limit, failing if the source is larger
func (l *Loader) readLimited(r io.Reader, name string) ([]byte, error) {
	max := l.limit()
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, max)
	}
	return data, nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, urlStr string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %s", urlStr, resp.Status)
	}

	data, err := l.readLimited(resp.Body, urlStr)
	if err != nil {
		return nil, err
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = determineMimeType(urlStr)
	}
	return &Resource{
		URL:      urlStr,
		Data:     data,
		MimeType: mimeType,
		Type:     determineResourceType(mimeType, urlStr),
	}, nil
}

// loadLocal loads a resource from a local file, falling back to the search paths
func (l *Loader) loadLocal(path string) (*Resource, error) {
	r, err := l.readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	return r, err
}

func (l *Loader) readFile(path string) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := l.readLimited(f, path)
	if err != nil {
		return nil, err
	}
	mimeType := determineMimeType(path)
	return &Resource{
		URL:      path,
		Data:     data,
		MimeType: mimeType,
		Type:     determineResourceType(mimeType, path),
	}, nil
}

// loadFromSearchPaths tries to load a resource from the search paths
func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	base := filepath.Base(filename)
	for _, dir := range l.searchPaths {
		r, err := l.readFile(filepath.Join(dir, base))
		if err == nil {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

// determineMimeType determines the MIME type of a file
func determineMimeType(path string) string {
	if u, err := url.Parse(path); err == nil && isRemote(path) {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

// determineResourceType determines the type of a resource
func determineResourceType(mimeType, path string) ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceTypeImage
	case mimeType == "text/css":
		return ResourceTypeCSS
	case mimeType == "text/html":
		return ResourceTypeHTML
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".tif", ".bmp":
		return ResourceTypeImage
	case ".css":
		return ResourceTypeCSS
	case ".html", ".htm":
		return ResourceTypeHTML
	}
	return ResourceTypeOther
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type != ResourceTypeImage {
		return nil, fmt.Errorf("resource is not an image: %s", shorten(ref))
	}
	return r, nil
}

// LoadCSS loads a CSS resource
func (l *Loader) LoadCSS(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Type != ResourceTypeCSS {
		return nil, fmt.Errorf("resource is not CSS: %s", shorten(ref))
	}
	return r, nil
}

// LoadHTML loads a document; any text type is accepted
func (l *Loader) LoadHTML(ctx context.Context, ref string) (*Resource, error) {
	return l.Load(ctx, ref)
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}
