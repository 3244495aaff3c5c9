package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	extctx "github.com/indexdata/crosslink/econtent/common"
)

const maxBodySize = 64 * 1024

type ToolResponse struct {
	ToolName     string           `json:"toolName"`
	PageTitle    string           `json:"pageTitle"`
	Instructions string           `json:"instructions,omitempty"`
	CanAddNew    bool             `json:"canAddNew"`
	Structure    ObjectStructure  `json:"structure"`
	Objects      []map[string]any `json:"objects"`
}

type ErrorMessage struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// Handler serves JSON CRUD for the objects of one editor under /admin/{toolName}.
type Handler[T any] struct {
	Editor ObjectEditor[T]
	Access Access
}

func NewHandler[T any](editor ObjectEditor[T], access Access) *Handler[T] {
	return &Handler[T]{Editor: editor, Access: access}
}

func (h *Handler[T]) Register(mux *http.ServeMux) {
	base := "/admin/" + h.Editor.ToolName()
	mux.HandleFunc("GET "+base, h.guard(h.list))
	mux.HandleFunc("POST "+base, h.guard(h.create))
	mux.HandleFunc("GET "+base+"/{id}", h.guard(h.get))
	mux.HandleFunc("PUT "+base+"/{id}", h.guard(h.update))
	mux.HandleFunc("DELETE "+base+"/{id}", h.guard(h.delete))
}

// guard refuses requests without the editor's permission with 403.
func (h *Handler[T]) guard(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Access == nil || !h.Access.HasPermission(r, h.Editor.Permission()) {
			ctx := h.ctx(r, "guard")
			ctx.Logger().Warn("admin request denied", "path", r.URL.Path, "permission", h.Editor.Permission())
			writeError(ctx, w, ErrAccessDenied)
			return
		}
		fn(w, r)
	}
}

func (h *Handler[T]) ctx(r *http.Request, method string) extctx.ExtendedContext {
	other := map[string]string{"method": method, "tool": h.Editor.ToolName()}
	if id := r.PathValue("id"); id != "" {
		other["id"] = id
	}
	return extctx.CreateExtCtxWithArgs(r.Context(), &extctx.LoggerArgs{Other: other})
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	ctx := h.ctx(r, "list")
	objects, err := h.Editor.GetAllObjects(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	canAddNew, err := h.Editor.CanAddNew(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	resp := ToolResponse{
		ToolName:     h.Editor.ToolName(),
		PageTitle:    h.Editor.PageTitle(),
		Instructions: h.Editor.Instructions(),
		CanAddNew:    canAddNew,
		Structure:    h.Editor.ObjectStructure(),
		Objects:      make([]map[string]any, 0, len(objects)),
	}
	for _, obj := range objects {
		m, err := h.mask(obj)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		resp.Objects = append(resp.Objects, m)
	}
	writeJsonResponse(w, http.StatusOK, resp)
}

func (h *Handler[T]) get(w http.ResponseWriter, r *http.Request) {
	ctx := h.ctx(r, "get")
	obj, err := h.Editor.GetObject(ctx, r.PathValue("id"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.writeObject(ctx, w, http.StatusOK, obj)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	ctx := h.ctx(r, "create")
	values, err := readValues(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	canAddNew, err := h.Editor.CanAddNew(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !canAddNew {
		writeError(ctx, w, ErrCannotAddNew)
		return
	}
	structure := h.Editor.ObjectStructure()
	for _, name := range structure.ofType(TypeLabel) {
		delete(values, name)
	}
	for _, name := range structure.ofType(TypeStoredPassword) {
		if values[name] == PasswordMask {
			delete(values, name)
		}
	}
	h.save(ctx, w, http.StatusCreated, structure, values)
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	ctx := h.ctx(r, "update")
	values, err := readValues(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	existing, err := h.Editor.GetObject(ctx, r.PathValue("id"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	stored, err := extctx.StructToMap(existing)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	structure := h.Editor.ObjectStructure()
	for _, name := range structure.ofType(TypeLabel) {
		values[name] = stored[name]
	}
	for _, name := range structure.ofType(TypeStoredPassword) {
		if v, ok := values[name]; !ok || v == PasswordMask {
			values[name] = stored[name]
		}
	}
	h.save(ctx, w, http.StatusOK, structure, values)
}

func (h *Handler[T]) save(ctx extctx.ExtendedContext, w http.ResponseWriter, status int, structure ObjectStructure, values map[string]any) {
	if err := structure.Validate(values); err != nil {
		writeError(ctx, w, err)
		return
	}
	obj, err := toObject[T](values)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	saved, err := h.Editor.SaveObject(ctx, obj)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	ctx.Logger().Info("object saved", "status", status)
	h.writeObject(ctx, w, status, saved)
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	ctx := h.ctx(r, "delete")
	if err := h.Editor.DeleteObject(ctx, r.PathValue("id")); err != nil {
		writeError(ctx, w, err)
		return
	}
	ctx.Logger().Info("object deleted")
	w.WriteHeader(http.StatusNoContent)
}

// mask renders obj by property name with stored passwords hidden.
func (h *Handler[T]) mask(obj T) (map[string]any, error) {
	m, err := extctx.StructToMap(obj)
	if err != nil {
		return nil, err
	}
	for _, name := range h.Editor.ObjectStructure().ofType(TypeStoredPassword) {
		if v, ok := m[name]; ok && v != "" {
			m[name] = PasswordMask
		}
	}
	return m, nil
}

func (h *Handler[T]) writeObject(ctx extctx.ExtendedContext, w http.ResponseWriter, status int, obj T) {
	m, err := h.mask(obj)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJsonResponse(w, status, m)
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}

func readValues(r *http.Request) (map[string]any, error) {
	var values map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&values); err != nil {
		return nil, &badRequestError{fmt.Errorf("invalid request body: %w", err)}
	}
	if values == nil {
		return nil, &badRequestError{errors.New("invalid request body: expected an object")}
	}
	return values, nil
}

func toObject[T any](values map[string]any) (T, error) {
	var obj T
	buf, err := json.Marshal(values)
	if err != nil {
		return obj, &badRequestError{err}
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&obj); err != nil {
		return obj, &badRequestError{fmt.Errorf("invalid object: %w", err)}
	}
	return obj, nil
}

func writeJsonResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(ctx extctx.ExtendedContext, w http.ResponseWriter, err error) {
	resp := ErrorMessage{Error: err.Error()}
	var validationErr *ValidationError
	var badRequest *badRequestError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrCannotAddNew):
		status = http.StatusConflict
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.Error = "validation failed"
		resp.Problems = validationErr.Problems
	case errors.As(err, &badRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		ctx.Logger().Error("error serving admin request", "error", err.Error())
	} else {
		ctx.Logger().Info("admin request rejected", "status", status, "error", err.Error())
	}
	writeJsonResponse(w, status, resp)
}
