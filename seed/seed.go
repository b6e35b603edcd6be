// Package seed reads the deploy-time list of showcase videos, grouped by
// channel name.
package seed

import (
	"fmt"
	"os"
	"slices"
	"time"

	"doza.gg/showcase/model"
	"gopkg.in/yaml.v3"
)

type Group struct {
	Name string
	URLs []string
}

// List is immutable after Load and safe for concurrent use.
type List struct {
	groups []Group
	ids    []model.VideoID
}

// Load reads a YAML or JSON mapping of group name to video URLs. When groups
// is not empty only those groups are read, in that order.
func Load(path string, groups []string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read seed file: %w", err)
	}

	return Parse(data, groups)
}

func Parse(data []byte, groups []string) (*List, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse seed file: %w", err)
	}
	if len(doc.Content) == 0 {
		return &List{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("seed file must map group names to url lists")
	}

	byName := make(map[string][]string, len(root.Content)/2)
	order := []string{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var urls []string
		if err := root.Content[i+1].Decode(&urls); err != nil {
			return nil, fmt.Errorf("seed group %q: %w", name, err)
		}
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = urls
	}
	if len(groups) > 0 {
		order = groups
	}

	l := &List{}
	seen := map[model.VideoID]struct{}{}
	taken := map[string]bool{}
	for _, name := range order {
		urls, ok := byName[name]
		if !ok || taken[name] {
			continue
		}
		taken[name] = true
		l.groups = append(l.groups, Group{Name: name, URLs: urls})
		for _, u := range urls {
			id, ok := model.ParseVideoID(u)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			l.ids = append(l.ids, id)
		}
	}

	return l, nil
}

// IDs returns the distinct seed ids in file order.
func (l *List) IDs() []model.VideoID {
	return slices.Clone(l.ids)
}

func (l *List) Groups() []Group {
	return slices.Clone(l.groups)
}

type ExportEntry struct {
	ID  model.VideoID `json:"id"`
	URL string        `json:"url"`
}

type Export struct {
	VideosByChannel map[string][]ExportEntry `json:"videosByChannel"`
	TotalVideos     int                      `json:"totalVideos"`
	Skipped         []string                 `json:"skipped,omitempty"`
	LastUpdated     time.Time                `json:"lastUpdated"`
}

// Export lists every seed URL with its id. URLs without a recognisable id are
// reported in Skipped.
func (l *List) Export(now time.Time) Export {
	exp := Export{
		VideosByChannel: make(map[string][]ExportEntry, len(l.groups)),
		LastUpdated:     now,
	}
	for _, g := range l.groups {
		entries := make([]ExportEntry, 0, len(g.URLs))
		for _, u := range g.URLs {
			id, ok := model.ParseVideoID(u)
			if !ok {
				exp.Skipped = append(exp.Skipped, u)
				continue
			}
			entries = append(entries, ExportEntry{ID: id, URL: u})
		}
		exp.VideosByChannel[g.Name] = entries
		exp.TotalVideos += len(entries)
	}

	return exp
}
