package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

// WriteError renders {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// AddServerTiming appends a Server-Timing entry in milliseconds.
func AddServerTiming(w http.ResponseWriter, name string, d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, ms))
}
