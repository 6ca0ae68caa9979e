// Package eventcatalogservice contains the open-data event catalog: the
// hypermedia resource engine serving the Events and Sources collections and
// the harvester that ingests events from registered feed sources.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package eventcatalogservice
