package respond

import (
	"encoding/json"
	"net/http"
)

// envelope is the body shape of every successful API response.
type envelope struct {
	Data any `json:"data"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// Data wraps v as {"data": v}.
func Data(w http.ResponseWriter, r *http.Request, code int, v any) {
	JSON(w, r, code, envelope{Data: v})
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}
