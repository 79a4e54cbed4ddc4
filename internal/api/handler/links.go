package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vpnclashfa-backup/freeconfig/internal/collect"
)

// Snapshot exposes the latest scheduled collection. *job.CollectJob implements it.
type Snapshot interface {
	Latest() *collect.Report
}

var errNoSnapshot = errors.New("no collection has completed yet")

// LinksHandler serves GET /v1/links from the latest snapshot.
//
//	?protocol=vless   only links of one protocol
//	?format=text      one link per line instead of JSON
func LinksHandler(snap Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var report *collect.Report
		if snap != nil {
			report = snap.Latest()
		}
		if report == nil {
			respondError(w, http.StatusNotFound, "links", errNoSnapshot)
			return
		}

		links := report.Filter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("protocol"))))
		if r.URL.Query().Get("format") == "text" {
			respondText(w, linkStrings(links))
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"links":         links,
			"subscriptions": report.Subscriptions,
			"collected_at":  report.StartedAt.UTC().Format(time.RFC3339),
			"failed":        report.Failed(),
		})
	}
}
