// Package docs registers the Swagger document served under /swagger.
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
        "/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List published documents",
                "parameters": [
                    {"type": "string", "description": "comma separated type slugs", "name": "type", "in": "query"},
                    {"type": "string", "description": "publication year or cdox-all-years", "name": "year", "in": "query"},
                    {"type": "string", "description": "ASC or DESC", "name": "order", "in": "query"},
                    {"type": "string", "description": "render the publication date", "name": "show_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DocumentListResponse"}}
                }
            }
        },
        "/documents/filter": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Filter documents with the form fields of the public filter form",
                "parameters": [
                    {"type": "string", "description": "type slug or cdox-all-doctypes", "name": "cdoxfilterdoctypes", "in": "formData"},
                    {"type": "string", "description": "type restriction for cdox-all-doctypes", "name": "cdoxfilter-all-doctypes", "in": "formData"},
                    {"type": "string", "description": "year or cdox-all-years", "name": "cdoxfilteryear", "in": "formData"},
                    {"type": "string", "description": "ASC or DESC", "name": "dateorder", "in": "formData"},
                    {"type": "string", "description": "render the publication date", "name": "showpubdate", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DocumentListResponse"}}
                }
            }
        },
        "/documents/years": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Publication years with document counts",
                "parameters": [
                    {"type": "string", "description": "ASC or DESC", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.YearListResponse"}}
                }
            }
        },
        "/documents/types": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Document types with usage counts",
                "parameters": [
                    {"type": "string", "description": "drop types without published documents", "name": "hide_empty", "in": "query"},
                    {"type": "string", "description": "name, slug or count", "name": "orderby", "in": "query"},
                    {"type": "string", "description": "ASC or DESC", "name": "order", "in": "query"},
                    {"type": "string", "description": "comma separated slugs to restrict to", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TypeListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/filter-form": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Data for the first render of a filter form",
                "parameters": [
                    {"type": "string", "description": "comma separated slugs offered by the form", "name": "type", "in": "query"},
                    {"type": "string", "description": "preselect the current year", "name": "initial_current_year", "in": "query"},
                    {"type": "string", "description": "render publication dates (default true)", "name": "show_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FilterFormResponse"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get a document by ID",
                "parameters": [
                    {"type": "string", "description": "document UUID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/view.DocumentView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}/downloads": {
            "post": {
                "tags": ["documents"],
                "summary": "Count one download of a document",
                "parameters": [
                    {"type": "string", "description": "document UUID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe, pings the database",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.DocumentListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/view.DocumentView"}},
                "total": {"type": "integer"}
            }
        },
        "handler.YearListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/view.YearView"}}
            }
        },
        "handler.TypeListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/view.TypeView"}}
            }
        },
        "handler.FilterFormResponse": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/view.DocumentView"}},
                "selected_year": {"type": "integer"},
                "show_date": {"type": "boolean"},
                "types": {"type": "array", "items": {"$ref": "#/definitions/view.TypeView"}},
                "years": {"type": "array", "items": {"$ref": "#/definitions/view.YearView"}}
            }
        },
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "view.DocumentView": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "download_count": {"type": "integer"},
                "download_url": {"type": "string"},
                "file_size": {"type": "integer"},
                "file_size_human": {"type": "string"},
                "has_metadata": {"type": "boolean"},
                "icon_class": {"type": "string"},
                "id": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "view.TypeView": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "view.YearView": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "year": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Corporate Documents Catalog API",
	Description:      "Cached catalog of published corporate documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
