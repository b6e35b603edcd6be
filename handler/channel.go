package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"doza.gg/showcase/model"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

const defaultFeedSize = 10

type ChannelAPI struct {
	svc    VideoService
	logger *slog.Logger
}

func NewChannelAPI(svc VideoService, logger *slog.Logger) *ChannelAPI {
	return &ChannelAPI{
		svc:    svc,
		logger: logger,
	}
}

func (c *ChannelAPI) Feed(w http.ResponseWriter, r *http.Request) {
	channelID := model.ChannelID(strings.TrimSpace(chi.URLParam(r, "channelID")))
	q := r.URL.Query()

	limit := defaultFeedSize
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			Error(w, http.StatusBadRequest, "invalid max parameter", fmt.Errorf("max must be a positive integer, got %q", raw))
			return
		}
		limit = n
	}
	longOnly, _ := strconv.ParseBool(q.Get("long"))

	res, err := c.svc.ChannelFeed(r.Context(), channelID, limit, longOnly)
	if err != nil {
		returnErr(r.Context(), c.logger, w, errStatus(err), "could not fetch channel videos", err, string(channelID))
		return
	}

	w.Header().Set("X-Cache", string(res.Status))
	JSON(w, http.StatusOK, struct {
		model.ChannelFeed
		FeaturedVideo *model.Video `json:"featuredVideo"`
	}{
		ChannelFeed:   res.Feed,
		FeaturedVideo: res.Featured,
	})
}
