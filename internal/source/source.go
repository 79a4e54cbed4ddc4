// 文件路径: internal/source/source.go
// 模块说明: 读取待解析的文档：标准输入、文件、目录或 http(s) 地址。
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// ErrTooLarge is returned when a document exceeds the configured size cap.
var ErrTooLarge = errors.New("source: document exceeds size limit")

// Stdin is the reference that reads standard input.
const Stdin = "-"

// Document is one unit of text handed to the parser.
type Document struct {
	Name    string
	Content string
}

// Options configure a Loader. Zero values fall back to sane defaults.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	Retry     RetryConfig
	StripHTML bool
	UserAgent string

	Client *http.Client
	Stdin  io.Reader
	Logger *slog.Logger
}

// Loader resolves references into documents.
type Loader struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 8 << 20
)

// NewLoader builds a Loader.
func NewLoader(opts Options) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Loader{opts: opts, client: client, logger: logger}
}

// Load reads ref, which is "-", a file, a directory (regular files only, not
// recursive) or an http(s) URL.
func (l *Loader) Load(ctx context.Context, ref string) ([]Document, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, errors.New("source: empty reference")
	case ref == Stdin:
		content, err := readLimited(l.opts.Stdin, l.opts.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []Document{{Name: "stdin", Content: content}}, nil
	case isRemote(ref):
		content, err := l.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return []Document{{Name: ref, Content: content}}, nil
	}

	info, err := os.Stat(ref)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", ref, err)
	}
	if !info.IsDir() {
		doc, err := l.readFile(ref)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}
	return l.readDir(ref)
}

func (l *Loader) readDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var docs []Document
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		doc, err := l.readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			l.logger.Warn("skip file", "path", filepath.Join(dir, entry.Name()), "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) readFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	content, err := readLimited(f, l.opts.MaxBytes)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if l.opts.StripHTML && isHTMLFile(path) {
		content = stripHTML(content)
	}
	return Document{Name: path, Content: content}, nil
}

func readLimited(r io.Reader, limit int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > limit {
		return "", ErrTooLarge
	}
	return string(raw), nil
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

var textPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

// stripHTML keeps the visible text of an HTML page. Entities stay escaped;
// the parser unescapes them.
func stripHTML(content string) string {
	return textPolicy().Sanitize(content)
}
