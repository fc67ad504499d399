package fetcher

import (
	"fmt"
	"strings"

	"ewintr.nl/vidfeed/model"
	"github.com/mmcdole/gofeed"
)

const unknownChannel = "Unknown"

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parse normalizes one raw feed document into a channel name and its video
// records. Entries without a publish timestamp cannot be sorted and are
// dropped. The shorts flag set here is a provisional guess from the
// "#shorts" hashtag; a resolved duration supersedes it later.
func (p *Parser) Parse(doc string) (*model.ChannelFeed, error) {
	parsed, err := p.parser.ParseString(doc)
	if err != nil {
		return &model.ChannelFeed{}, fmt.Errorf("parse feed: %w", err)
	}

	channel := parsed.Title
	if channel == "" {
		channel = unknownChannel
	}

	videos := []*model.Video{}
	for _, item := range parsed.Items {
		if item.PublishedParsed == nil {
			continue
		}
		id := item.GUID
		if id == "" {
			id = item.Link
		}
		videos = append(videos, &model.Video{
			ID:          model.VideoID(id),
			Title:       model.CleanTitle(item.Title),
			Channel:     channel,
			Link:        item.Link,
			PublishedAt: *item.PublishedParsed,
			Duration:    model.DurationUnknown,
			IsShort:     hasShortsTag(item),
		})
	}

	return &model.ChannelFeed{Channel: channel, Videos: videos}, nil
}

func hasShortsTag(item *gofeed.Item) bool {
	return strings.Contains(strings.ToLower(item.Title), "#shorts") ||
		strings.Contains(strings.ToLower(item.Description), "#shorts")
}
