package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/kanban-board/internal/identity"
	"github.com/hiroki-koketsu/kanban-board/internal/jsontree"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/kanban-board/internal/docstore")

// maxDocumentSize bounds request bodies.
const maxDocumentSize = 16 << 20

var errNotCollection = errors.New("document is not a collection")

// Server handles document requests of the form {verb} /{path}.json.
type Server struct {
	backend Backend
	logger  *slog.Logger
}

// NewServer creates a Server over backend.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	return &Server{backend: backend, logger: logger}
}

// Routes returns the chi router serving the document tree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/*", s.Get)
	r.Put("/*", s.Put)
	r.Delete("/*", s.Delete)
	r.Post("/*", s.Append)

	return r
}

// documentPath extracts "tasks" from "/tasks.json" and "tasks/0" from
// "/tasks/0.json". ok is false for
// requests that do not address a document.
func documentPath(r *http.Request) (string, bool) {
	p := chi.URLParam(r, "*")
	if !strings.HasSuffix(p, ".json") {
		return "", false
	}
	p = strings.Trim(strings.TrimSuffix(p, ".json"), "/")
	return p, p != ""
}

// Get returns the value at path or null. Paths below a root document
// walk object keys and array indices.
func (s *Server) Get(w http.ResponseWriter, r *http.Request) {
	path, ok := documentPath(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "not a document path")
		return
	}
	ctx, span := tracer.Start(r.Context(), "docstore.Get",
		trace.WithAttributes(attribute.String("store.path", path)),
	)
	defer span.End()

	root, rest := jsontree.Split(path)
	doc, found, err := s.backend.Get(ctx, root)
	if err == nil && found {
		doc, err = jsontree.Lookup(doc, rest)
		found = doc != nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read document", slog.String("path", path), slog.Any("error", err))
		s.respondError(w, http.StatusInternalServerError, "failed to read document")
		return
	}
	span.SetAttributes(attribute.Bool("store.found", found))
	if !found {
		doc = json.RawMessage("null")
	}
	s.respondRaw(w, http.StatusOK, doc)
}

// Put replaces the value at path. A null body removes it.
func (s *Server) Put(w http.ResponseWriter, r *http.Request) {
	path, ok := documentPath(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "not a document path")
		return
	}
	ctx, span := tracer.Start(r.Context(), "docstore.Put",
		trace.WithAttributes(attribute.String("store.path", path)),
	)
	defer span.End()

	doc, err := readDocument(r)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid document", slog.String("path", path), slog.Any("error", err))
		s.respondError(w, http.StatusBadRequest, "invalid JSON document")
		return
	}

	if err := s.write(ctx, path, doc); err != nil {
		s.writeFailed(ctx, w, path, "failed to write document", err)
		return
	}

	s.logger.DebugContext(ctx, "document replaced", slog.String("path", path), slog.Int("bytes", len(doc)))
	s.respondRaw(w, http.StatusOK, doc)
}

// Delete removes path and everything below it.
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	path, ok := documentPath(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "not a document path")
		return
	}
	ctx, span := tracer.Start(r.Context(), "docstore.Delete",
		trace.WithAttributes(attribute.String("store.path", path)),
	)
	defer span.End()

	if err := s.write(ctx, path, nil); err != nil {
		s.writeFailed(ctx, w, path, "failed to delete document", err)
		return
	}

	s.logger.DebugContext(ctx, "document deleted", slog.String("path", path))
	s.respondRaw(w, http.StatusOK, json.RawMessage("null"))
}

// write stores doc at path, removing it when doc is null. Root documents
// are written whole; nested paths rewrite their root in one transaction.
func (s *Server) write(ctx context.Context, path string, doc json.RawMessage) error {
	root, rest := jsontree.Split(path)
	if len(rest) == 0 {
		if jsontree.IsNull(doc) {
			return s.backend.Delete(ctx, root)
		}
		return s.backend.Put(ctx, root, doc)
	}
	return s.backend.Update(ctx, root, func(old json.RawMessage) (json.RawMessage, error) {
		return jsontree.Assign(old, rest, doc)
	})
}

// Append adds the body as a new child of the collection at path.
func (s *Server) Append(w http.ResponseWriter, r *http.Request) {
	path, ok := documentPath(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "not a document path")
		return
	}
	ctx, span := tracer.Start(r.Context(), "docstore.Append",
		trace.WithAttributes(attribute.String("store.path", path)),
	)
	defer span.End()

	child, err := readDocument(r)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid document", slog.String("path", path), slog.Any("error", err))
		s.respondError(w, http.StatusBadRequest, "invalid JSON document")
		return
	}

	root, rest := jsontree.Split(path)
	var name string
	err = s.backend.Update(ctx, root, func(old json.RawMessage) (json.RawMessage, error) {
		target, err := jsontree.Lookup(old, rest)
		if err != nil {
			return nil, err
		}
		collection, childName, err := appendChild(target, child)
		if err != nil {
			return nil, err
		}
		name = childName
		return jsontree.Assign(old, rest, collection)
	})
	if err != nil {
		s.writeFailed(ctx, w, path, "failed to append document", err)
		return
	}

	span.SetAttributes(attribute.String("store.child", name))
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name})
}

// writeFailed answers 409 when the write does not fit the document's shape
// and 500 otherwise.
func (s *Server) writeFailed(ctx context.Context, w http.ResponseWriter, path, message string, err error) {
	if errors.Is(err, errNotCollection) || errors.Is(err, jsontree.ErrConflict) {
		s.respondError(w, http.StatusConflict, err.Error())
		return
	}
	s.logger.ErrorContext(ctx, message, slog.String("path", path), slog.Any("error", err))
	s.respondError(w, http.StatusInternalServerError, message)
}

// appendChild adds child to an array document by index, or to an object
// document under a generated key.
func appendChild(old, child json.RawMessage) (json.RawMessage, string, error) {
	trimmed := bytes.TrimSpace(old)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		doc, err := json.Marshal([]json.RawMessage{child})
		return doc, "0", err
	case trimmed[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", err
		}
		items = append(items, child)
		doc, err := json.Marshal(items)
		return doc, strconv.Itoa(len(items) - 1), err
	case trimmed[0] == '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, "", err
		}
		name := identity.NewID()
		fields[name] = child
		doc, err := json.Marshal(fields)
		return doc, name, err
	}
	return nil, "", errNotCollection
}

func readDocument(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, errors.New("body is not valid JSON")
	}
	return body, nil
}

func (s *Server) respondRaw(w http.ResponseWriter, status int, doc json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(doc)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
