// Package docs holds the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/zone-monitor/main.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/positions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "List tracked positions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.positionListResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Ingest a single position",
                "parameters": [
                    {"description": "Position report", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.positionRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/positions/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Ingest a batch of positions",
                "parameters": [
                    {"description": "Array of position reports", "name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.positionRequest"}}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/positions/{entity_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Get one tracked position",
                "parameters": [
                    {"type": "string", "description": "Entity id", "name": "entity_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.positionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Stop tracking an entity",
                "parameters": [
                    {"type": "string", "description": "Entity id", "name": "entity_id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/violations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["violations"],
                "summary": "List violation events",
                "parameters": [
                    {"type": "string", "description": "Filter by entity id", "name": "entity_id", "in": "query"},
                    {"type": "integer", "description": "Max items (1-500, default 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.violationListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/zones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "List zones",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.zoneResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Add a zone",
                "parameters": [
                    {"description": "Zone", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.zoneRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.zoneChangeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/zones/contains": {
            "get": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Classify a point",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.containsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/zones/{name}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Remove a zone",
                "parameters": [
                    {"type": "string", "description": "Zone name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.zoneChangeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.acceptedResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer"}, "message": {"type": "string"}}
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.pointRequest": {
            "type": "object",
            "required": ["lat", "lng"],
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        },
        "handler.pointResponse": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        },
        "handler.positionRequest": {
            "type": "object",
            "required": ["entity_id", "lat", "lng"],
            "properties": {
                "entity_id": {"type": "string", "maxLength": 128},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "source": {"type": "string", "maxLength": 64},
                "source_timestamp": {"type": "string", "example": "2024-05-01T09:00:00Z"},
                "status": {"type": "string", "maxLength": 64}
            }
        },
        "handler.positionResponse": {
            "type": "object",
            "properties": {
                "entity_id": {"type": "string"},
                "first_seen": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "revision": {"type": "integer"},
                "source": {"type": "string"},
                "source_timestamp": {"type": "string"},
                "state": {"type": "string"},
                "status": {"type": "string"},
                "zones": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.positionListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.positionResponse"}},
                "stats": {"$ref": "#/definitions/handler.statsResponse"}
            }
        },
        "handler.statsResponse": {
            "type": "object",
            "properties": {
                "added": {"type": "integer"},
                "invalid": {"type": "integer"},
                "out_of_zone": {"type": "integer"},
                "removed": {"type": "integer"},
                "stale": {"type": "integer"},
                "tracked": {"type": "integer"},
                "updated": {"type": "integer"}
            }
        },
        "handler.zoneRequest": {
            "type": "object",
            "required": ["name", "polygon"],
            "properties": {
                "name": {"type": "string", "maxLength": 128},
                "polygon": {"type": "array", "minItems": 3, "items": {"$ref": "#/definitions/handler.pointRequest"}}
            }
        },
        "handler.zoneResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "polygon": {"type": "array", "items": {"$ref": "#/definitions/handler.pointResponse"}},
                "vertices": {"type": "integer"}
            }
        },
        "handler.zoneChangeResponse": {
            "type": "object",
            "properties": {"transitions": {"type": "integer"}, "zone": {"type": "string"}}
        },
        "handler.containsResponse": {
            "type": "object",
            "properties": {
                "in_bounds": {"type": "boolean"},
                "point": {"$ref": "#/definitions/handler.pointResponse"},
                "zones": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.violationResponse": {
            "type": "object",
            "properties": {
                "detected_at": {"type": "string"},
                "entity_id": {"type": "string"},
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "point": {"$ref": "#/definitions/handler.pointResponse"},
                "source": {"type": "string"},
                "source_timestamp": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.violationListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.violationResponse"}}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "status": {"type": "string"}}
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
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
	Title:            "Zone Monitor API",
	Description:      "Live position reconciliation and geofence alerts for field officials.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
