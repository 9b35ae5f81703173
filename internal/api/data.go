package api

import (
	"net/http"
)

// NoDataBody is served until the first snapshot is published.
const NoDataBody = "No data found."

// dataHandler serves the cached document as-is. It never touches the network
// and holds the cache's read lock only long enough to copy a slice header.
func dataHandler(snapshots Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")

		doc, ok := snapshots.Read()
		if !ok {
			h.Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(NoDataBody))
			return
		}

		h.Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}
