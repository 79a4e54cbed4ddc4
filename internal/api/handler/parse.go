// 文件路径: internal/api/handler/parse.go
// 模块说明: POST /v1/parse，请求体即待解析文本，可用 ?protocols= 限定在启用协议的子集内。
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/vpnclashfa-backup/freeconfig/internal/parser"
	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// SubsetBuilder builds a parser restricted to the given protocol names.
type SubsetBuilder func(names []string) parser.DocumentParser

// ParseHandler serves POST /v1/parse.
type ParseHandler struct {
	parser   parser.DocumentParser
	registry *protocol.Registry
	build    SubsetBuilder
	subsets  sync.Map // sorted names joined by "," -> parser.DocumentParser
}

// NewParseHandler wires the default parser and, for ?protocols=, a builder.
func NewParseHandler(p parser.DocumentParser, reg *protocol.Registry, build SubsetBuilder) *ParseHandler {
	return &ParseHandler{parser: p, registry: reg, build: build}
}

func (h *ParseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.parserFor(r.URL.Query().Get("protocols"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "parse", err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "parse", fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "parse", err)
		return
	}

	res := p.Parse(string(body))
	if r.URL.Query().Get("format") == "text" {
		respondText(w, linkStrings(res.Links))
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *ParseHandler) parserFor(raw string) (parser.DocumentParser, error) {
	names := splitNames(raw)
	if len(names) == 0 {
		return h.parser, nil
	}
	for _, name := range names {
		if !h.registry.IsActive(name) {
			return nil, fmt.Errorf("protocol %q is not active", name)
		}
	}
	if h.build == nil {
		return nil, errors.New("protocol filtering is not available")
	}
	key := strings.Join(names, ",")
	if p, ok := h.subsets.Load(key); ok {
		return p.(parser.DocumentParser), nil
	}
	p, _ := h.subsets.LoadOrStore(key, h.build(names))
	return p.(parser.DocumentParser), nil
}

// splitNames lower-cases, dedupes and sorts a comma separated list.
func splitNames(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func linkStrings(links []parser.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Link
	}
	return out
}
