package notify

import (
	"ctfrank/internal/chrono"
	"ctfrank/internal/ranking"
	"fmt"
)

const (
	embedTitle = "CTFtime ranking update"
	embedColor = 11610890
)

// Message is the json body of a discord compatible webhook call.
type Message struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Embeds    []Embed `json:"embeds"`
}

type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Summary is everything a run knows when it reports.
type Summary struct {
	Current ranking.Observation
	Change  ranking.Change
	// Previous is the zero Observation when nothing was stored before.
	Previous ranking.Observation
}

type Identity struct {
	Username  string
	AvatarURL string
}

// BuildMessage renders a summary into a single embed.
func BuildMessage(id Identity, summary Summary) Message {
	description := fmt.Sprintf(
		"World: %s %s\nRegion: %s %s",
		summary.Change.World.Indicator(), summary.Current.World,
		summary.Change.Region.Indicator(), summary.Current.Region,
	)

	return Message{
		Username:  id.Username,
		AvatarURL: id.AvatarURL,
		Embeds: []Embed{{
			Title:       embedTitle,
			Description: description,
			Timestamp:   chrono.Timestamp(summary.Current.ObservedAt),
			Color:       embedColor,
			Fields: []Field{
				{
					Name:   "Last checked",
					Value:  summary.Previous.Timestamp(),
					Inline: true,
				},
				{
					Name: "Last rating",
					Value: fmt.Sprintf(
						"World: %s\nRegion: %s",
						summary.Previous.World, summary.Previous.Region,
					),
					Inline: true,
				},
			},
		}},
	}
}
