package feeds

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/ports"
	"opendata/contexts/open-data/event-catalog-service/transport/hypermedia"
)

// Parser reads calendar and JSON feeds into candidates. The format is
// chosen from the response Content-Type alone.
type Parser struct{}

func (Parser) Parse(feed ports.FetchedFeed) ([]ports.FeedCandidate, error) {
	mediaType, _, err := mime.ParseMediaType(feed.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrFeedFormatUnrecognized, feed.ContentType)
	}

	switch mediaType {
	case hypermedia.MediaTypeCalendar:
		entries, err := hypermedia.DecodeCalendar(feed.Body)
		if err != nil {
			return nil, err
		}
		candidates := make([]ports.FeedCandidate, 0, len(entries))
		for _, entry := range entries {
			candidates = append(candidates, ports.FeedCandidate{ExternalID: entry.UID, Fields: entry.Fields})
		}
		return candidates, nil
	case hypermedia.MediaTypeCollection:
		return decodeJSONFeed(feed.Body, hypermedia.DecodeCollection)
	}
	if isJSON(mediaType) {
		decode := hypermedia.DecodeJSON
		if hasCollectionEnvelope(feed.Body) {
			decode = hypermedia.DecodeCollection
		}
		return decodeJSONFeed(feed.Body, decode)
	}
	return nil, fmt.Errorf("%w: %q", domainerrors.ErrFeedFormatUnrecognized, mediaType)
}

// isJSON matches application/json, the legacy text/json and any +json
// structured suffix.
func isJSON(mediaType string) bool {
	return mediaType == hypermedia.MediaTypeJSON || mediaType == "text/json" || strings.HasSuffix(mediaType, "+json")
}

// hasCollectionEnvelope reports whether a JSON body is a collection+json
// document served under a generic JSON type.
func hasCollectionEnvelope(body []byte) bool {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	_, ok := envelope["collection"]
	return ok
}

func decodeJSONFeed(body []byte, decode func(entities.Kind, []byte) ([]map[string]any, error)) ([]ports.FeedCandidate, error) {
	items, err := decode(entities.KindEvent, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrFeedParseFailed, err)
	}
	return jsonCandidates(items), nil
}

func jsonCandidates(items []map[string]any) []ports.FeedCandidate {
	candidates := make([]ports.FeedCandidate, 0, len(items))
	for _, item := range items {
		externalID := ""
		switch id := item["id"].(type) {
		case string:
			externalID = strings.TrimSpace(id)
		case float64:
			externalID = fmt.Sprint(id)
		}
		candidates = append(candidates, ports.FeedCandidate{ExternalID: externalID, Fields: item})
	}
	return candidates
}
