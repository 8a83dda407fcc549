package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	appservices "luastyle/internal/application/services"
	"luastyle/internal/application/usecases"
	"luastyle/internal/domain/entities"
	domainservices "luastyle/internal/domain/services"
	"luastyle/internal/domain/valueobjects"
)

type sessionResponse struct {
	ID          string          `json:"id"`
	State       string          `json:"state"`
	Progress    float64         `json:"progress"`
	Message     string          `json:"message"`
	Assets      []assetResponse `json:"assets"`
	Accessories []string        `json:"accessories"`
	Results     []string        `json:"results"`
	Error       string          `json:"error,omitempty"`
}

type assetResponse struct {
	Role   string `json:"role"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

func newSessionResponse(out *usecases.SessionOutput) sessionResponse {
	resp := sessionResponse{
		ID:          string(out.ID),
		State:       string(out.State),
		Progress:    out.Progress,
		Message:     out.Message,
		Assets:      []assetResponse{},
		Accessories: out.Accessories,
		Results:     []string{},
		Error:       out.ErrorMessage,
	}
	if resp.Accessories == nil {
		resp.Accessories = []string{}
	}
	for _, asset := range out.Assets {
		resp.Assets = append(resp.Assets, assetResponse{
			Role:   asset.Role.String(),
			Width:  asset.Width,
			Height: asset.Height,
			Size:   asset.Size,
		})
	}
	// 結果画像はURLで返し、JSONに画像本体は含めない
	for i := 0; i < out.ResultCount; i++ {
		resp.Results = append(resp.Results, resultURL(out.ID, i))
	}
	return resp
}

func resultURL(id entities.SessionID, index int) string {
	return fmt.Sprintf("/api/sessions/%s/results/%d", id, index+1)
}

func sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, map[string]string{"error": message})
}

// sendDomainError maps err onto a status code and a user-facing message.
func sendDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	sendError(w, message, status)
}

func classifyError(err error) (int, string) {
	var (
		decodeErr   *domainservices.DecodeError
		maxBytesErr *http.MaxBytesError
	)

	if failure, ok := domainservices.IsGenerationFailure(err); ok {
		if failure.QuotaExhausted() {
			return http.StatusTooManyRequests, "The server is busy right now. Please wait a moment and try again."
		}
		return http.StatusBadGateway, failure.Message
	}

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "Image is too large (10MB max)"
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity, "The file could not be read as an image"
	case errors.Is(err, entities.ErrInputsMissing),
		errors.Is(err, entities.ErrTryOnInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, valueobjects.ErrUnknownAccessory),
		errors.Is(err, valueobjects.ErrUnknownRole),
		errors.Is(err, valueobjects.ErrUnknownTheme),
		errors.Is(err, appservices.ErrInvalidResultIndex):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entities.ErrSessionNotFound),
		errors.Is(err, usecases.ErrResultNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, usecases.TimeoutMessage
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
