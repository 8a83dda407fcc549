package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	appservices "luastyle/internal/application/services"
	"luastyle/internal/application/usecases"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
)

const maxFileSize = 10 * 1024 * 1024 // 10MB

type TryOnHandler struct {
	tryOnUseCase     *usecases.TryOnUseCase
	parameterService *appservices.ParameterService
}

func NewTryOnHandler(
	tryOnUseCase *usecases.TryOnUseCase,
	parameterService *appservices.ParameterService,
) *TryOnHandler {
	return &TryOnHandler{
		tryOnUseCase:     tryOnUseCase,
		parameterService: parameterService,
	}
}

func sessionID(r *http.Request) entities.SessionID {
	return entities.SessionID(mux.Vars(r)["id"])
}

func (h *TryOnHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.tryOnUseCase.CreateSession(r.Context())
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+string(out.ID))
	sendJSON(w, http.StatusCreated, newSessionResponse(out))
}

func (h *TryOnHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.tryOnUseCase.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(out))
}

// HandleResetSession returns the session to idle and discards images and results.
func (h *TryOnHandler) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.tryOnUseCase.Reset(r.Context(), sessionID(r))
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(out))
}

// HandleUploadImage accepts a multipart "image" field or a raw image body.
// A request without a file leaves the session unchanged.
func (h *TryOnHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	role, err := valueobjects.ParseRole(mux.Vars(r)["role"])
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	data, err := readImageBody(w, r)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	out, err := h.tryOnUseCase.Ingest(r.Context(), sessionID(r), role, data)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(out))
}

func (h *TryOnHandler) HandleToggleAccessory(w http.ResponseWriter, r *http.Request) {
	out, err := h.tryOnUseCase.ToggleAccessory(r.Context(), sessionID(r), mux.Vars(r)["label"])
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(out))
}

// HandleTryOn starts a try-on and answers 202 right away. With wait=true the
// request blocks until the try-on settles.
func (h *TryOnHandler) HandleTryOn(w http.ResponseWriter, r *http.Request) {
	opts := h.parameterService.ParseTryOnOptions(r)
	id := sessionID(r)

	if !opts.Wait {
		if _, err := h.tryOnUseCase.StartTryOn(r.Context(), id); err != nil {
			sendDomainError(w, r, err)
			return
		}
		out, err := h.tryOnUseCase.Snapshot(r.Context(), id)
		if err != nil {
			sendDomainError(w, r, err)
			return
		}
		sendJSON(w, http.StatusAccepted, newSessionResponse(out))
		return
	}

	ctx := r.Context()
	if opts.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.WaitTimeout)
		defer cancel()
	}

	out, err := h.tryOnUseCase.TryOnAndWait(ctx, id)
	if err != nil {
		slog.Warn("Virtual Try-On failed", "session_id", id, "error", err)
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(out))
}

func (h *TryOnHandler) HandleAccessories(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string][]string{"accessories": valueobjects.Accessories})
}

func (h *TryOnHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func readImageBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

type ResultHandler struct {
	resultUseCase    *usecases.ResultUseCase
	parameterService *appservices.ParameterService
}

func NewResultHandler(
	resultUseCase *usecases.ResultUseCase,
	parameterService *appservices.ParameterService,
) *ResultHandler {
	return &ResultHandler{
		resultUseCase:    resultUseCase,
		parameterService: parameterService,
	}
}

func (h *ResultHandler) resultIndex(r *http.Request) (int, error) {
	return h.parameterService.ParseResultIndex(mux.Vars(r)["n"])
}

func (h *ResultHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	index, err := h.resultIndex(r)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	out, err := h.resultUseCase.Download(r.Context(), sessionID(r), index)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.Type)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

// HandleShare returns the share payload. The server has no platform share
// action, so the response always carries the data URI fallback.
func (h *ResultHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	index, err := h.resultIndex(r)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	out, err := h.resultUseCase.Share(r.Context(), sessionID(r), index, nil)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"shared":   out.Shared,
		"title":    usecases.ShareTitle,
		"text":     usecases.ShareText,
		"fallback": out.Fallback,
	})
}

func (h *ResultHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	index, err := h.resultIndex(r)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}

	suggestions, err := h.resultUseCase.Suggest(r.Context(), sessionID(r), index)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// PreferenceUseCaseFactory builds a preference use case bound to one request.
type PreferenceUseCaseFactory func(w http.ResponseWriter, r *http.Request) *usecases.PreferenceUseCase

type PreferenceHandler struct {
	newUseCase PreferenceUseCaseFactory
}

func NewPreferenceHandler(newUseCase PreferenceUseCaseFactory) *PreferenceHandler {
	return &PreferenceHandler{newUseCase: newUseCase}
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (h *PreferenceHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.newUseCase(w, r).Theme(r.Context())
	if err != nil {
		slog.Warn("theme lookup failed, using default", "error", err)
	}
	sendJSON(w, http.StatusOK, themeRequest{Theme: theme.String()})
}

// HandleSetTheme accepts {"theme": "dark"} or a theme form value.
func (h *PreferenceHandler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
			sendError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	} else {
		req.Theme = r.FormValue("theme")
	}

	theme, err := h.newUseCase(w, r).SetTheme(r.Context(), req.Theme)
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, themeRequest{Theme: theme.String()})
}

func (h *PreferenceHandler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.newUseCase(w, r).ToggleTheme(r.Context())
	if err != nil {
		sendDomainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, themeRequest{Theme: theme.String()})
}
