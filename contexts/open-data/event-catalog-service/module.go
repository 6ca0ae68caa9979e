package eventcatalogservice

import (
	"log/slog"

	"opendata/contexts/open-data/event-catalog-service/adapters/feeds"
	httpadapter "opendata/contexts/open-data/event-catalog-service/adapters/http"
	"opendata/contexts/open-data/event-catalog-service/adapters/memory"
	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/application/commands"
	"opendata/contexts/open-data/event-catalog-service/application/queries"
	"opendata/contexts/open-data/event-catalog-service/application/workers"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
	"opendata/contexts/open-data/event-catalog-service/ports"
	"opendata/contexts/open-data/event-catalog-service/transport/hypermedia"
)

// Module is the composition surface of the event catalog.
// Runtime wiring should consume the handlers and the harvester; Store is
// exposed for tests/inspection when the in-memory adapters are used.
type Module struct {
	Events    httpadapter.Handler
	Sources   httpadapter.Handler
	Harvester workers.Harvester
	Store     *memory.Store
}

type Dependencies struct {
	Events        ports.RecordRepository
	Sources       ports.RecordRepository
	EventUpserter ports.EventUpserter
	SourceLister  ports.SourceLister
	Fetcher       ports.FeedFetcher
	Parser        ports.FeedParser
	Metrics       ports.HarvestMetrics
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	SiteURL       string
	Logger        *slog.Logger
}

// NewModule wires both collections and the harvester against explicit ports.
func NewModule(deps Dependencies) Module {
	events := application.Resource{
		Kind:    entities.KindEvent,
		Schema:  schema.Event,
		Policy:  services.AccessPolicy{PublicRead: true},
		Records: deps.Events,
	}
	sources := application.Resource{
		Kind:    entities.KindSource,
		Schema:  schema.Source,
		Policy:  services.AccessPolicy{PublicRead: false},
		Records: deps.Sources,
	}

	eventOffers := hypermedia.Offers{
		{MediaType: hypermedia.MediaTypeCollection, Encode: hypermedia.EncodeCollection},
		{MediaType: hypermedia.MediaTypeJSON, Encode: hypermedia.EncodeJSON},
		{MediaType: hypermedia.MediaTypeCalendar, Encode: hypermedia.EncodeCalendar},
		{MediaType: hypermedia.MediaTypeCSV, Encode: hypermedia.EncodeCSV},
	}
	sourceOffers := hypermedia.Offers{
		{MediaType: hypermedia.MediaTypeCollection, Encode: hypermedia.EncodeCollection},
		{MediaType: hypermedia.MediaTypeJSON, Encode: hypermedia.EncodeJSON},
		{MediaType: hypermedia.MediaTypeCSV, Encode: hypermedia.EncodeCSV},
	}

	parser := deps.Parser
	if parser == nil {
		parser = feeds.Parser{}
	}

	return Module{
		Events:  newHandler(events, eventOffers, deps),
		Sources: newHandler(sources, sourceOffers, deps),
		Harvester: workers.Harvester{
			Sources:     deps.SourceLister,
			Events:      deps.EventUpserter,
			Fetcher:     deps.Fetcher,
			Parser:      parser,
			Schema:      schema.Event,
			IDGenerator: deps.IDGenerator,
			Clock:       deps.Clock,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
	}
}

func newHandler(resource application.Resource, readOffers hypermedia.Offers, deps Dependencies) httpadapter.Handler {
	return httpadapter.Handler{
		Kind:       resource.Kind,
		Schema:     resource.Schema,
		SiteURL:    deps.SiteURL,
		ReadOffers: readOffers,
		WriteOffers: hypermedia.Offers{
			{MediaType: hypermedia.MediaTypeCollection, Encode: hypermedia.EncodeCollection},
			{MediaType: hypermedia.MediaTypeJSON, Encode: hypermedia.EncodeJSON},
		},
		Intakes: hypermedia.Intakes{
			{MediaType: hypermedia.MediaTypeCollection, Decode: hypermedia.DecodeCollection},
			{MediaType: hypermedia.MediaTypeJSON, Decode: hypermedia.DecodeJSON},
		},
		ListRecords: queries.ListRecordsUseCase{
			Resource: resource,
			Logger:   deps.Logger,
		},
		GetRecord: queries.GetRecordUseCase{
			Resource: resource,
			Logger:   deps.Logger,
		},
		CreateRecords: commands.CreateRecordsUseCase{
			Resource:    resource,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
		ReplaceRecord: commands.ReplaceRecordUseCase{
			Resource: resource,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
		DeleteRecord: commands.DeleteRecordUseCase{
			Resource: resource,
			Logger:   deps.Logger,
		},
		Logger: deps.Logger,
	}
}

// NewInMemoryModule wires the catalog against in-memory adapters. Feeds are
// fetched through fetcher; nil disables harvesting from the network.
func NewInMemoryModule(siteURL string, idDomain string, fetcher ports.FeedFetcher, logger *slog.Logger) Module {
	store := memory.NewStore(idDomain, logger)
	module := NewModule(Dependencies{
		Events:        store.Collection(entities.KindEvent),
		Sources:       store.Collection(entities.KindSource),
		EventUpserter: store,
		SourceLister:  store,
		Fetcher:       fetcher,
		Clock:         store,
		IDGenerator:   store,
		SiteURL:       siteURL,
		Logger:        logger,
	})
	module.Store = store
	return module
}
