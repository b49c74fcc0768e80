// Package docs serves the OpenAPI document of the places API through swag.
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
        "/api/geo/places": {
            "get": {
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "List places",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/presenter.PlaceRecord"}}
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Create a place",
                "parameters": [
                    {
                        "description": "Place",
                        "name": "place",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/presenter.PlaceInput"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/presenter.PlaceRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/geo/places/nearest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Find the place nearest to a point",
                "parameters": [
                    {"type": "number", "description": "Reference latitude", "name": "latitude", "in": "query", "required": true},
                    {"type": "number", "description": "Reference longitude", "name": "longitude", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum distance in meters", "name": "distance", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presenter.PlaceRecord"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.detailBody"}}
                }
            }
        },
        "/api/geo/places/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Get a place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presenter.PlaceRecord"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.detailBody"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Replace a place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true},
                    {"description": "Place", "name": "place", "in": "body", "required": true, "schema": {"$ref": "#/definitions/presenter.PlaceInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presenter.PlaceRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.detailBody"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Update some fields of a place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "place", "in": "body", "required": true, "schema": {"$ref": "#/definitions/presenter.PlaceInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presenter.PlaceRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.detailBody"}}
                }
            },
            "delete": {
                "tags": ["places"],
                "summary": "Delete a place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.detailBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.detailBody": {
            "type": "object",
            "properties": {"detail": {"type": "string", "example": "Not found."}}
        },
        "handler.errorBody": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "A place with the same coordinates already exists."}}
        },
        "presenter.PlaceInput": {
            "type": "object",
            "required": ["name", "description", "latitude", "longitude"],
            "properties": {
                "name": {"type": "string", "maxLength": 255, "example": "Chernivtsi"},
                "description": {"type": "string", "example": "City in western Ukraine on the Prut river"},
                "latitude": {"type": "number", "example": 48.2921},
                "longitude": {"type": "number", "example": 25.9358},
                "srid": {"type": "integer", "example": 4326}
            },
            "example": {
                "name": "Belhorod",
                "description": "City in Russia near the Ukrainian border",
                "latitude": 50.5997,
                "longitude": 36.5983,
                "srid": 4326
            }
        },
        "presenter.PlaceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Chernivtsi"},
                "description": {"type": "string", "example": "City in western Ukraine on the Prut river"},
                "latitude": {"type": "number", "example": 48.2921},
                "longitude": {"type": "number", "example": 25.9358},
                "distance": {"type": "number", "description": "Meters to the reference point, nearest queries only", "example": 1234.5}
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
	Title:            "Geo Places API",
	Description:      "Stores named places and finds the one nearest to a point.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
