package httpadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/application/commands"
	"opendata/contexts/open-data/event-catalog-service/application/queries"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	httptransport "opendata/contexts/open-data/event-catalog-service/transport/http"
	"opendata/contexts/open-data/event-catalog-service/transport/hypermedia"
)

// Handler serves one collection. Read and write responses are negotiated
// against their own offer tables; write bodies must use one of Intakes.
type Handler struct {
	Kind          entities.Kind
	Schema        schema.Schema
	SiteURL       string
	ReadOffers    hypermedia.Offers
	WriteOffers   hypermedia.Offers
	Intakes       hypermedia.Intakes
	ListRecords   queries.ListRecordsUseCase
	GetRecord     queries.GetRecordUseCase
	CreateRecords commands.CreateRecordsUseCase
	ReplaceRecord commands.ReplaceRecordUseCase
	DeleteRecord  commands.DeleteRecordUseCase
	Logger        *slog.Logger
}

// WriteRequest is the raw material of a create or replace call. Body is
// read only once the caller has been authorized.
type WriteRequest struct {
	Caller      string
	Accept      string
	ContentType string
	Body        io.Reader
}

// ListHandler godoc
// @Summary List a collection
// @Description Returns a page of events or sources in the negotiated format. Events are public; sources require an identity and are scoped to it.
// @Tags catalog
// @Produce application/vnd.collection+json
// @Produce json
// @Produce text/calendar
// @Produce text/csv
// @Param collection path string true "events or sources"
// @Param X-Provider-Id header string false "Caller identity"
// @Param limit query int false "Page size (0..50, default 50)"
// @Param offset query int false "Items to skip"
// @Param sort_by query string false "Sortable field or id"
// @Param sort_direction query string false "asc or desc"
// @Param start_time query string false "Events only: window start"
// @Param end_time query string false "Events only: window end"
// @Success 200 {object} hypermedia.CollectionDocument
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 406 {object} httptransport.ErrorResponse
// @Router /v1/{collection} [get]
func (h Handler) ListHandler(ctx context.Context, caller string, accept string, values url.Values) (httptransport.Representation, error) {
	offer, err := h.ReadOffers.Select(accept)
	if err != nil {
		return httptransport.Representation{}, err
	}
	result, err := h.ListRecords.Execute(ctx, queries.ListRecordsQuery{Caller: caller, Values: values})
	if err != nil {
		return httptransport.Representation{}, err
	}

	body, err := offer.Encode(h.document(result.Items, false, result.Total))
	if err != nil {
		return httptransport.Representation{}, h.encodeFailed(err)
	}
	total := result.Total
	return httptransport.Representation{
		Status:      http.StatusOK,
		ContentType: offer.MediaType,
		Body:        body,
		TotalCount:  &total,
	}, nil
}

// GetHandler godoc
// @Summary Get one record
// @Description Returns one event or source. Sources owned by another caller answer 404.
// @Tags catalog
// @Produce application/vnd.collection+json
// @Produce json
// @Produce text/calendar
// @Produce text/csv
// @Param collection path string true "events or sources"
// @Param id path string true "Record id"
// @Param X-Provider-Id header string false "Caller identity"
// @Success 200 {object} hypermedia.CollectionDocument
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 406 {object} httptransport.ErrorResponse
// @Router /v1/{collection}/{id} [get]
func (h Handler) GetHandler(ctx context.Context, caller string, accept string, id string) (httptransport.Representation, error) {
	offer, err := h.ReadOffers.Select(accept)
	if err != nil {
		return httptransport.Representation{}, err
	}
	record, err := h.GetRecord.Execute(ctx, queries.GetRecordQuery{Caller: caller, ID: id})
	if err != nil {
		return httptransport.Representation{}, err
	}

	body, err := offer.Encode(h.document([]entities.Record{record}, true, 1))
	if err != nil {
		return httptransport.Representation{}, h.encodeFailed(err)
	}
	return httptransport.Representation{
		Status:      http.StatusOK,
		ContentType: offer.MediaType,
		Body:        body,
	}, nil
}

// CreateHandler godoc
// @Summary Create records
// @Description Creates one record from a template or a batch from collection items. A batch is stored all-or-nothing.
// @Tags catalog
// @Accept application/vnd.collection+json
// @Accept json
// @Produce application/vnd.collection+json
// @Produce json
// @Param collection path string true "events or sources"
// @Param X-Provider-Id header string true "Caller identity"
// @Param request body hypermedia.CollectionDocument true "Template or collection items"
// @Success 201 {object} hypermedia.CollectionDocument
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 406 {object} httptransport.ErrorResponse
// @Failure 415 {object} httptransport.ErrorResponse
// @Router /v1/{collection} [post]
func (h Handler) CreateHandler(ctx context.Context, req WriteRequest) (httptransport.Representation, error) {
	var offer hypermedia.Offer
	result, err := h.CreateRecords.Execute(ctx, commands.CreateRecordsCommand{
		Caller: req.Caller,
		Payload: func() ([]map[string]any, error) {
			selected, err := h.WriteOffers.Select(req.Accept)
			if err != nil {
				return nil, err
			}
			offer = selected
			return h.decode(req)
		},
	})
	if err != nil {
		return httptransport.Representation{}, err
	}

	single := len(result.Records) == 1
	body, err := offer.Encode(h.document(result.Records, single, len(result.Records)))
	if err != nil {
		return httptransport.Representation{}, h.encodeFailed(err)
	}
	rep := httptransport.Representation{
		Status:      http.StatusCreated,
		ContentType: offer.MediaType,
		Body:        body,
	}
	if single {
		rep.Location = h.itemHref(result.Records[0].ID)
	}
	return rep, nil
}

// ReplaceHandler godoc
// @Summary Replace a record
// @Description Replaces every field of a record owned by the caller. Omitted fields reset to their defaults.
// @Tags catalog
// @Accept application/vnd.collection+json
// @Accept json
// @Produce json
// @Param collection path string true "events or sources"
// @Param id path string true "Record id"
// @Param X-Provider-Id header string true "Caller identity"
// @Param request body hypermedia.CollectionDocument true "Template"
// @Success 200 {object} httptransport.UpdatedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 415 {object} httptransport.ErrorResponse
// @Router /v1/{collection}/{id} [put]
func (h Handler) ReplaceHandler(ctx context.Context, id string, req WriteRequest) (httptransport.UpdatedResponse, error) {
	_, err := h.ReplaceRecord.Execute(ctx, commands.ReplaceRecordCommand{
		Caller: req.Caller,
		ID:     id,
		Payload: func() ([]map[string]any, error) {
			return h.decode(req)
		},
	})
	if err != nil {
		return httptransport.UpdatedResponse{}, err
	}
	return httptransport.UpdatedResponse{Status: "updated"}, nil
}

// DeleteHandler godoc
// @Summary Delete a record
// @Description Deletes a record owned by the caller.
// @Tags catalog
// @Param collection path string true "events or sources"
// @Param id path string true "Record id"
// @Param X-Provider-Id header string true "Caller identity"
// @Success 204
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/{collection}/{id} [delete]
func (h Handler) DeleteHandler(ctx context.Context, caller string, id string) error {
	return h.DeleteRecord.Execute(ctx, commands.DeleteRecordCommand{Caller: caller, ID: id})
}

func (h Handler) decode(req WriteRequest) ([]map[string]any, error) {
	intake, err := h.Intakes.Select(req.ContentType)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: empty body", domainerrors.ErrInvalidPayload)
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidPayload, err)
	}
	return intake.Decode(h.Kind, body)
}

func (h Handler) document(records []entities.Record, single bool, total int) hypermedia.Document {
	return hypermedia.Document{
		Kind:     h.Kind,
		Schema:   h.Schema,
		Href:     h.collectionHref(),
		ItemHref: h.itemHref,
		Records:  records,
		Single:   single,
		Total:    total,
	}
}

func (h Handler) collectionHref() string {
	return strings.TrimRight(h.SiteURL, "/") + "/v1/" + h.Kind.Plural()
}

func (h Handler) itemHref(id string) string {
	return h.collectionHref() + "/" + url.PathEscape(id)
}

func (h Handler) encodeFailed(err error) error {
	application.ResolveLogger(h.Logger).Error("response encoding failed",
		"event", "http_catalog_encode_failed",
		"module", "open-data/event-catalog-service",
		"layer", "transport",
		"kind", string(h.Kind),
		"error", err.Error(),
	)
	return err
}
