package parser

import (
	"log/slog"
	"strings"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

// candidateStop ends a candidate early. Quotes and angle brackets come from
// HTML attributes and markdown that wrap links.
const candidateStop = " \t\r\n\"'`<>"

// Segmenter splits free text into link-shaped candidates.
type Segmenter struct {
	registry *protocol.Registry
	junk     *JunkTrimmer
	logger   *slog.Logger
}

// NewSegmenter wires a segmenter to the registry's prefix pattern.
func NewSegmenter(reg *protocol.Registry, junk *JunkTrimmer, logger *slog.Logger) *Segmenter {
	if junk == nil {
		junk = NewJunkTrimmer(DefaultJunkPhrases())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{registry: reg, junk: junk, logger: logger}
}

// Segment returns trimmed candidates in the order they appear. A candidate
// runs from its prefix to the first stop character or the next prefix,
// whichever comes first, so links pasted back to back are split apart.
func (s *Segmenter) Segment(text string) []string {
	clean := Sanitize(text)
	if clean == "" {
		return nil
	}
	locs := s.registry.CombinedPrefixPattern().FindAllStringIndex(clean, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(clean)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		raw := clean[loc[0]:end]
		if cut := strings.IndexAny(raw, candidateStop); cut >= 0 {
			raw = raw[:cut]
		}
		trimmed := s.junk.Trim(raw)
		if trimmed == "" {
			s.logger.Debug("candidate empty after trimming", "raw", raw)
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
