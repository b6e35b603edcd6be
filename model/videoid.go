package model

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// UploadPrefix marks ids of uploaded videos. ':' is outside the YouTube id
// charset, so uploaded and external ids can never collide.
const UploadPrefix = "upload:"

func IsVideoID(s string) bool {
	return videoIDRE.MatchString(s)
}

// ParseVideoID returns the canonical 11 character id from a bare id or from a
// youtu.be, watch, shorts, embed, live or v URL.
func ParseVideoID(raw string) (VideoID, bool) {
	raw = strings.TrimSpace(raw)
	if IsVideoID(raw) {
		return VideoID(raw), true
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "youtu.be" {
		first, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		return candidate(first)
	}

	if v := u.Query().Get("v"); v != "" {
		return candidate(v)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 {
		switch parts[0] {
		case "shorts", "embed", "live", "v":
			return candidate(parts[1])
		}
	}

	return "", false
}

func candidate(s string) (VideoID, bool) {
	if !IsVideoID(s) {
		return "", false
	}
	return VideoID(s), true
}

// ParseVideoIDs extracts ids from raw values, dropping misses and duplicates
// while keeping the first-seen order.
func ParseVideoIDs(raw []string) []VideoID {
	seen := make(map[VideoID]struct{}, len(raw))
	ids := make([]VideoID, 0, len(raw))
	for _, r := range raw {
		id, ok := ParseVideoID(r)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// UploadID places raw in the upload namespace, generating a fresh id when raw
// is empty.
func UploadID(raw string) VideoID {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return VideoID(UploadPrefix + uuid.NewString())
	case strings.HasPrefix(raw, UploadPrefix):
		return VideoID(raw)
	default:
		return VideoID(UploadPrefix + raw)
	}
}

func (id VideoID) IsUpload() bool {
	return strings.HasPrefix(string(id), UploadPrefix)
}
