// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/{collection}": {
            "get": {
                "description": "Returns a page of events or sources in the negotiated format. Events are public; sources require an identity and are scoped to it.",
                "produces": ["application/vnd.collection+json", "application/json", "text/calendar", "text/csv"],
                "tags": ["catalog"],
                "summary": "List a collection",
                "parameters": [
                    {"type": "string", "description": "events or sources", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-Provider-Id", "in": "header"},
                    {"type": "integer", "description": "Page size (0..50, default 50)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Items to skip", "name": "offset", "in": "query"},
                    {"type": "string", "description": "Sortable field or id", "name": "sort_by", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "sort_direction", "in": "query"},
                    {"type": "string", "description": "Events only: window start", "name": "start_time", "in": "query"},
                    {"type": "string", "description": "Events only: window end", "name": "end_time", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/hypermedia.CollectionDocument"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "406": {"description": "Not Acceptable", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Creates one record from a template or a batch from collection items. A batch is stored all-or-nothing.",
                "consumes": ["application/vnd.collection+json", "application/json"],
                "produces": ["application/vnd.collection+json", "application/json"],
                "tags": ["catalog"],
                "summary": "Create records",
                "parameters": [
                    {"type": "string", "description": "events or sources", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-Provider-Id", "in": "header", "required": true},
                    {"description": "Template or collection items", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/hypermedia.CollectionDocument"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/hypermedia.CollectionDocument"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "406": {"description": "Not Acceptable", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/v1/{collection}/{id}": {
            "get": {
                "description": "Returns one event or source. Sources owned by another caller answer 404.",
                "produces": ["application/vnd.collection+json", "application/json", "text/calendar", "text/csv"],
                "tags": ["catalog"],
                "summary": "Get one record",
                "parameters": [
                    {"type": "string", "description": "events or sources", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "description": "Record id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-Provider-Id", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/hypermedia.CollectionDocument"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "406": {"description": "Not Acceptable", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Replaces every field of a record owned by the caller. Omitted fields reset to their defaults.",
                "consumes": ["application/vnd.collection+json", "application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Replace a record",
                "parameters": [
                    {"type": "string", "description": "events or sources", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "description": "Record id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-Provider-Id", "in": "header", "required": true},
                    {"description": "Template", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/hypermedia.CollectionDocument"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.UpdatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Deletes a record owned by the caller.",
                "tags": ["catalog"],
                "summary": "Delete a record",
                "parameters": [
                    {"type": "string", "description": "events or sources", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "description": "Record id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-Provider-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/v1/harvest": {
            "post": {
                "description": "Runs one ingestion sweep over every active source.",
                "produces": ["application/json"],
                "tags": ["harvest"],
                "summary": "Run a harvest sweep",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.HarvestResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "hypermedia.DataEntry": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "value": {}}
        },
        "hypermedia.CollectionItem": {
            "type": "object",
            "properties": {
                "href": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/hypermedia.DataEntry"}}
            }
        },
        "hypermedia.Template": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/hypermedia.DataEntry"}}}
        },
        "hypermedia.Collection": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "href": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/hypermedia.CollectionItem"}},
                "total_count": {"type": "integer"},
                "current_count": {"type": "integer"},
                "template": {"$ref": "#/definitions/hypermedia.Template"}
            }
        },
        "hypermedia.CollectionDocument": {
            "type": "object",
            "properties": {"collection": {"$ref": "#/definitions/hypermedia.Collection"}}
        },
        "httptransport.ErrorDTO": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "httptransport.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/httptransport.ErrorDTO"}}
            }
        },
        "httptransport.UpdatedResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "httptransport.HarvestResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "sources_visited": {"type": "integer"},
                "sources_failed": {"type": "integer"},
                "events_created": {"type": "integer"},
                "events_updated": {"type": "integer"},
                "events_discarded": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Open data event catalog API",
	Description:      "Hypermedia API over the events and sources collections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
