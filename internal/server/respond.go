package server

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/structview/structview/pkg/core"
	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/msgpack"

// detailResponse is the error body. Entries use the diagnostic shape so
// clients can highlight the offending field.
type detailResponse struct {
	Detail []core.Diagnostic `json:"detail"`
}

// detail writes a single-entry error body.
func (s *Server) detail(w http.ResponseWriter, r *http.Request, status int, path, message string) {
	s.respond(w, r, status, detailResponse{Detail: []core.Diagnostic{{Path: path, Message: message}}})
}

// respond encodes v as msgpack when the client asks for it, JSON otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		body        []byte
		contentType string
		err         error
	)

	if wantsMsgpack(r.Header.Get("Accept")) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		err = enc.Encode(v)
		body, contentType = buf.Bytes(), contentTypeMsgpack
	} else {
		body, err = json.Marshal(v)
		contentType = "application/json"
	}
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func wantsMsgpack(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case contentTypeMsgpack, "application/x-msgpack", "application/vnd.msgpack":
			return true
		}
	}
	return false
}
