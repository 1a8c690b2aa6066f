package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxJSONBody caps request bodies for the JSON endpoints.
const maxJSONBody = 1 << 20

// decodeJSON decodes a single JSON document from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	// Trailing garbage after the document is a client error.
	if dec.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}
