package hypermedia

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

const (
	MediaTypeCollection = "application/vnd.collection+json"
	MediaTypeJSON       = "application/json"
	MediaTypeCalendar   = "text/calendar"
	MediaTypeCSV        = "text/csv"
)

// Offer pairs a media type with the encoder producing it.
type Offer struct {
	MediaType string
	Encode    Encoder
}

// Offers is an ordered negotiation table. The first entry is served when
// the client accepts anything.
type Offers []Offer

func (o Offers) MediaTypes() []string {
	types := make([]string, 0, len(o))
	for _, offer := range o {
		types = append(types, offer.MediaType)
	}
	return types
}

// Select picks the offer matching accept, honouring q-values.
func (o Offers) Select(accept string) (Offer, error) {
	mediaType, err := Negotiate(accept, o.MediaTypes())
	if err != nil {
		return Offer{}, err
	}
	for _, offer := range o {
		if offer.MediaType == mediaType {
			return offer, nil
		}
	}
	return Offer{}, domainerrors.ErrNotAcceptable
}

// Intake pairs an accepted request Content-Type with its decoder.
type Intake struct {
	MediaType string
	Decode    Decoder
}

type Intakes []Intake

// Select returns the decoder registered for contentType. Parameters such as
// charset are ignored.
func (in Intakes) Select(contentType string) (Intake, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Intake{}, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedContentType, contentType)
	}
	for _, intake := range in {
		if intake.MediaType == mediaType {
			return intake, nil
		}
	}
	return Intake{}, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedContentType, mediaType)
}

type mediaRange struct {
	mediaType string
	quality   float64
}

// Negotiate matches the ranges of an Accept header, highest quality first,
// against offers in table order. An empty header selects the first offer.
func Negotiate(accept string, offers []string) (string, error) {
	if len(offers) == 0 {
		return "", domainerrors.ErrNotAcceptable
	}
	if strings.TrimSpace(accept) == "" {
		return offers[0], nil
	}

	ranges := parseAccept(accept)
	for _, r := range ranges {
		for _, offer := range offers {
			if rangeMatches(r.mediaType, offer) {
				return offer, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", domainerrors.ErrNotAcceptable, accept)
}

func parseAccept(accept string) []mediaRange {
	var ranges []mediaRange
	for _, part := range strings.Split(accept, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mediaType, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		quality := 1.0
		if raw, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			quality = parsed
		}
		if quality <= 0 {
			continue
		}
		ranges = append(ranges, mediaRange{mediaType: mediaType, quality: quality})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].quality > ranges[j].quality
	})
	return ranges
}

func rangeMatches(mediaRange string, offer string) bool {
	if mediaRange == "*/*" || mediaRange == offer {
		return true
	}
	prefix, ok := strings.CutSuffix(mediaRange, "/*")
	return ok && strings.HasPrefix(offer, prefix+"/")
}
