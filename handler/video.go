package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"doza.gg/showcase/model"
	"golang.org/x/exp/slog"
)

const (
	maxBodyBytes = 1 << 20
	// MaxBatchIDs is the largest number of distinct ids one POST may add.
	MaxBatchIDs = 1000
)

type VideoAPI struct {
	svc    VideoService
	seeds  SeedExporter
	logger *slog.Logger
}

func NewVideoAPI(svc VideoService, seeds SeedExporter, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		svc:    svc,
		seeds:  seeds,
		logger: logger,
	}
}

// List returns metadata for the ids in the query when given, and the full
// collection otherwise.
func (v *VideoAPI) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("ids")
	if raw == "" {
		raw = q.Get("videoIds")
	}
	if raw != "" {
		v.lookup(w, r, raw)
		return
	}

	res, err := v.svc.Collection(r.Context())
	if err != nil {
		v.returnErr(r.Context(), w, errStatus(err), "could not build collection", err)
		return
	}

	w.Header().Set("X-Cache", string(res.Status))
	JSON(w, http.StatusOK, res.Collection)
}

func (v *VideoAPI) lookup(w http.ResponseWriter, r *http.Request, raw string) {
	values, err := splitIDs(raw)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid ids parameter", err)
		return
	}
	ids := model.ParseVideoIDs(values)
	if len(ids) == 0 {
		Error(w, http.StatusBadRequest, "no valid video ids", fmt.Errorf("could not find a video id in %q", raw))
		return
	}

	videos, err := v.svc.Lookup(r.Context(), ids)
	if err != nil {
		v.returnErr(r.Context(), w, errStatus(err), "could not fetch videos", err)
		return
	}

	JSON(w, http.StatusOK, struct {
		Videos []model.Video `json:"videos"`
	}{Videos: videos})
}

// splitIDs accepts a JSON array or a comma separated list.
func splitIDs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		values := []string{}
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, err
		}
		return values, nil
	}

	return strings.Split(raw, ","), nil
}

func (v *VideoAPI) Export(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, v.seeds.Export(time.Now().UTC()))
}

type videoPayload struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Source          string `json:"source"`
	VideoURL        string `json:"videoUrl"`
	Title           string `json:"title"`
	ChannelName     string `json:"channelName"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	Description     string `json:"description"`
	PublishedAt     string `json:"publishedAt"`
	ViewCount       string `json:"viewCount"`
	CommentCount    int64  `json:"commentCount"`
	DurationSeconds int64  `json:"durationSeconds"`
}

func (p videoPayload) uploaded() bool {
	return p.Source == string(model.SourceUploaded) || p.Source == "upload"
}

func (p videoPayload) row() model.PersistedRow {
	row := model.PersistedRow{
		ID:              model.UploadID(p.ID),
		Source:          model.SourceUploaded,
		Title:           p.Title,
		ChannelName:     p.ChannelName,
		ThumbnailURL:    p.ThumbnailURL,
		Description:     p.Description,
		ViewCount:       p.ViewCount,
		CommentCount:    p.CommentCount,
		DurationSeconds: p.DurationSeconds,
		FileURL:         p.VideoURL,
	}
	if published, err := time.Parse(time.RFC3339, p.PublishedAt); err == nil {
		row.PublishedAt = published
	}

	return row
}

type addRequest struct {
	Video  *videoPayload  `json:"video"`
	Videos []videoPayload `json:"videos"`
	URLs   []string       `json:"urls"`
}

type addBatchResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Inserted       int    `json:"inserted"`
	TotalAttempted int    `json:"totalAttempted"`
}

func (v *VideoAPI) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not decode request body", err)
		return
	}

	switch {
	case len(req.Videos) > 0 || len(req.URLs) > 0:
		v.addBatch(w, r, req)
	case req.Video != nil && req.Video.uploaded():
		v.addUploaded(w, r, *req.Video)
	case req.Video != nil:
		v.addOne(w, r, *req.Video)
	default:
		Error(w, http.StatusBadRequest, "no videos given", errors.New("expected video, videos or urls"))
	}
}

func (v *VideoAPI) addBatch(w http.ResponseWriter, r *http.Request, req addRequest) {
	raw := make([]string, 0, len(req.Videos)+len(req.URLs))
	for _, p := range req.Videos {
		if p.ID != "" {
			raw = append(raw, p.ID)
			continue
		}
		raw = append(raw, p.URL)
	}
	raw = append(raw, req.URLs...)

	ids := model.ParseVideoIDs(raw)
	if len(ids) == 0 {
		Error(w, http.StatusBadRequest, "no valid video ids", errors.New("none of the given values contain a video id"))
		return
	}
	if len(ids) > MaxBatchIDs {
		Error(w, http.StatusBadRequest, "too many videos", fmt.Errorf("got %d ids, at most %d per request", len(ids), MaxBatchIDs))
		return
	}

	inserted, err := v.svc.AddExternal(r.Context(), ids)
	if err != nil {
		v.returnErr(r.Context(), w, http.StatusInternalServerError, "could not add videos", err)
		return
	}

	message := fmt.Sprintf("Added %d video(s)", inserted)
	if existing := len(ids) - inserted; existing > 0 {
		message += fmt.Sprintf(", %d already existed", existing)
	}
	JSON(w, http.StatusOK, addBatchResult{
		Success:        true,
		Message:        message,
		Inserted:       inserted,
		TotalAttempted: len(ids),
	})
}

func (v *VideoAPI) addUploaded(w http.ResponseWriter, r *http.Request, p videoPayload) {
	if p.VideoURL == "" || p.Title == "" {
		Error(w, http.StatusBadRequest, "uploaded videos need a title and a videoUrl", errors.New("missing title or videoUrl"))
		return
	}

	row := p.row()
	if err := v.svc.AddUploaded(r.Context(), row); err != nil {
		v.returnErr(r.Context(), w, http.StatusInternalServerError, "could not save uploaded video", err)
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "Uploaded video saved", ID: string(row.ID)})
}

func (v *VideoAPI) addOne(w http.ResponseWriter, r *http.Request, p videoPayload) {
	raw := p.ID
	if raw == "" {
		raw = p.URL
	}
	id, ok := model.ParseVideoID(raw)
	if !ok {
		Error(w, http.StatusBadRequest, "invalid video id", fmt.Errorf("could not find a video id in %q", raw))
		return
	}

	inserted, err := v.svc.AddExternal(r.Context(), []model.VideoID{id})
	if err != nil {
		v.returnErr(r.Context(), w, http.StatusInternalServerError, "could not add video", err)
		return
	}
	if inserted == 0 {
		JSON(w, http.StatusOK, result{Success: false, Message: "Video already in collection", ID: string(id)})
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "Video added", ID: string(id)})
}

func (v *VideoAPI) Remove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("id"))
	if raw == "" {
		raw = strings.TrimSpace(q.Get("videoId"))
	}
	if raw == "" {
		Error(w, http.StatusBadRequest, "missing video id", errors.New("id parameter is required"))
		return
	}
	id := model.VideoID(raw)
	if !id.IsUpload() {
		if parsed, ok := model.ParseVideoID(raw); ok {
			id = parsed
		}
	}

	removed, err := v.svc.Remove(r.Context(), id)
	if err != nil {
		v.returnErr(r.Context(), w, http.StatusInternalServerError, "could not remove video", err)
		return
	}
	if !removed {
		JSON(w, http.StatusOK, result{Success: false, Message: "Video not found", ID: string(id)})
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "Video removed", ID: string(id)})
}

func (v *VideoAPI) Clear(w http.ResponseWriter, r *http.Request) {
	if err := v.svc.Clear(r.Context()); err != nil {
		v.returnErr(r.Context(), w, http.StatusInternalServerError, "could not clear videos", err)
		return
	}

	JSON(w, http.StatusOK, result{Success: true, Message: "All added videos removed"})
}

func (v *VideoAPI) returnErr(ctx context.Context, w http.ResponseWriter, status int, message string, err error, details ...any) {
	returnErr(ctx, v.logger, w, status, message, err, details...)
}
