package handler

import (
	"net/http"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

type protocolView struct {
	Name     string   `json:"name"`
	Prefixes []string `json:"prefixes"`
	Priority int      `json:"priority"`
	Parent   string   `json:"parent,omitempty"`
}

// ProtocolsHandler serves GET /v1/protocols: the active set in match order.
func ProtocolsHandler(reg *protocol.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		descs := reg.Descriptors()
		out := make([]protocolView, 0, len(descs))
		for _, d := range descs {
			prefixes := d.Prefixes
			if prefixes == nil {
				prefixes = []string{}
			}
			out = append(out, protocolView{Name: d.Name, Prefixes: prefixes, Priority: d.Priority, Parent: d.Parent})
		}
		respondJSON(w, http.StatusOK, map[string]any{"protocols": out})
	}
}
