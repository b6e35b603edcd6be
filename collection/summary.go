package collection

import (
	"slices"

	"doza.gg/showcase/model"
)

// Summarize counts videos per channel name. Channels with equal counts keep
// the order in which they were first seen.
func Summarize(videos []model.Video) []model.ChannelSummary {
	index := map[string]int{}
	summaries := []model.ChannelSummary{}
	for _, v := range videos {
		name := v.ChannelName
		if name == "" {
			name = model.UnknownChannel
		}
		i, ok := index[name]
		if !ok {
			i = len(summaries)
			index[name] = i
			summaries = append(summaries, model.ChannelSummary{Name: name, ChannelID: v.ChannelID})
		}
		if summaries[i].ChannelID == "" {
			summaries[i].ChannelID = v.ChannelID
		}
		summaries[i].Count++
	}

	slices.SortStableFunc(summaries, func(a, b model.ChannelSummary) int {
		return b.Count - a.Count
	})

	return summaries
}
