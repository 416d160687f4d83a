package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp models.ErrorResponse) {
	resp.OK = false
	writeJSON(w, status, resp)
}

// decodeBody unmarshals the request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
