package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"doza.gg/showcase/fetcher"
	"golang.org/x/exp/slog"
)

func Index(w http.ResponseWriter) {
	Message(w, http.StatusOK, "doza showcase index")
}

func Message(w http.ResponseWriter, status int, message string, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "details":%q}`, message, marshalErr.Error())
		return
	}
	w.Write(body)
}

func Error(w http.ResponseWriter, status int, message string, err error, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Error:   err.Error(),
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "error": %q, "details":%q}`, message, err.Error(), marshalErr.Error())
		return
	}

	w.Write(body)
}

func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(status)
	w.Write(body)
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// errStatus maps service errors to a response status.
func errStatus(err error) int {
	switch {
	case errors.Is(err, fetcher.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, fetcher.ErrChannelNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func returnErr(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, status int, message string, err error, details ...any) {
	logger.Error(message, slog.Any("err", err), slog.String("requestId", RequestID(ctx)), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
