package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"doza.gg/showcase/model"
	"doza.gg/showcase/storage"
	"golang.org/x/exp/slog"
)

type FeaturedAPI struct {
	repo   storage.FeaturedRelRepository
	logger *slog.Logger
}

func NewFeaturedAPI(repo storage.FeaturedRelRepository, logger *slog.Logger) *FeaturedAPI {
	return &FeaturedAPI{
		repo:   repo,
		logger: logger,
	}
}

func (f *FeaturedAPI) Get(w http.ResponseWriter, r *http.Request) {
	ft, err := f.repo.Get(r.Context())
	if err != nil {
		returnErr(r.Context(), f.logger, w, http.StatusInternalServerError, "could not read featured thumbnail", err)
		return
	}

	JSON(w, http.StatusOK, struct {
		Data *model.FeaturedThumbnail `json:"data"`
	}{Data: ft})
}

func (f *FeaturedAPI) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID      string `json:"videoId"`
		ThumbnailURL string `json:"thumbnailUrl"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not decode request body", err)
		return
	}
	if strings.TrimSpace(req.ThumbnailURL) == "" {
		Error(w, http.StatusBadRequest, "thumbnailUrl is required", errors.New("missing thumbnailUrl"))
		return
	}

	ft := model.FeaturedThumbnail{
		VideoID:      model.VideoID(strings.TrimSpace(req.VideoID)),
		ThumbnailURL: strings.TrimSpace(req.ThumbnailURL),
	}
	if err := f.repo.Set(r.Context(), ft); err != nil {
		returnErr(r.Context(), f.logger, w, http.StatusInternalServerError, "could not store featured thumbnail", err)
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "Featured thumbnail updated"})
}

func (f *FeaturedAPI) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := f.repo.Clear(r.Context()); err != nil {
		returnErr(r.Context(), f.logger, w, http.StatusInternalServerError, "could not clear featured thumbnail", err)
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "Featured thumbnail cleared"})
}
