package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pranshurastogi/specter/pkg/metrics"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/registry"
)

// serveCommand runs a minimal JSON facade over a file registry. The HTTP
// surface is peripheral; all semantics live in the registry.
func serveCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	registryPath := fs.String("registry", "registry.bin", "Registry file")
	logLevel := fs.String("log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := metrics.NewLogger(metrics.WithLevel(metrics.ParseLevel(*logLevel)), metrics.WithName("serve"))

	reg, err := registry.NewFileRegistry(*registryPath)
	if err != nil {
		return err
	}
	reg.SetLogger(log.Named("registry"))

	mux := http.NewServeMux()
	mux.HandleFunc("/announcements", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var ann protocol.Announcement
			if err := json.NewDecoder(r.Body).Decode(&ann); err != nil {
				httpError(w, http.StatusBadRequest, err)
				return
			}
			id, err := reg.Publish(&ann)
			if err != nil {
				httpError(w, http.StatusUnprocessableEntity, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
		case http.MethodGet:
			tagParam := r.URL.Query().Get("view_tag")
			if tagParam == "" {
				httpError(w, http.StatusBadRequest, fmt.Errorf("view_tag query parameter required"))
				return
			}
			tag, err := strconv.ParseUint(tagParam, 0, 8)
			if err != nil {
				httpError(w, http.StatusBadRequest, err)
				return
			}
			anns, err := reg.GetByViewTag(uint8(tag))
			if err != nil {
				httpError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, anns)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := reg.Stats()
		writeJSON(w, http.StatusOK, &stats)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("registry server listening", metrics.Fields{"addr": addr, "registry": *registryPath})
	return http.ListenAndServe(addr, mux)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
