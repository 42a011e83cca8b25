package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// GetContentType returns the appropriate content type for a file based on its extension
func GetContentType(filePath string) string {
	switch {
	case strings.HasSuffix(filePath, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(filePath, ".png"):
		return "image/png"
	case strings.HasSuffix(filePath, ".json"):
		return "application/json"
	case strings.HasSuffix(filePath, ".csv"):
		return "text/csv"
	case strings.HasSuffix(filePath, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", GetContentType(".json"))
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
