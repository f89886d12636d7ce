// Package docs registers the OpenAPI document served under /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/calls": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Register a new scholarship call in SCHEDULED status (staff only)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "Schedule a call",
                "parameters": [
                    {"description": "Call data", "name": "call", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateCallRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/calls/open": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "Get the open call",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/calls/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Calls whose start date falls in the given year, ordered by start date",
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "List calls of a year",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/calls/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Applicant count, acceptance and enrollment rates and top rankings (staff only)",
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "Call report",
                "parameters": [
                    {"type": "integer", "description": "Call ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/calls/{id}/reject": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "Reject a scheduled call",
                "parameters": [
                    {"type": "integer", "description": "Call ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/calls/{id}/applicants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["calls"],
                "summary": "List applicants of a call",
                "parameters": [
                    {"type": "integer", "description": "Call ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Items per page", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "submitted_date, overall_score or accepted", "name": "sort_by", "in": "query"},
                    {"type": "boolean", "description": "Sort descending", "name": "desc", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/applications": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Submit an application with up to three courses (student only)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Apply to the open call",
                "parameters": [
                    {"description": "Application data", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ApplyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/applications/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "My applications of a year",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/applications/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Students can only read their own applications",
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Get an application",
                "parameters": [
                    {"type": "integer", "description": "Application ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/students/{studentId}/applications/{year}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Applications and scholarship count of one student (staff only)",
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "A student's applications of a year",
                "parameters": [
                    {"type": "string", "description": "Student ID", "name": "studentId", "in": "path", "required": true},
                    {"type": "integer", "description": "Year", "name": "year", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "domain.CreateCallRequest": {
            "type": "object",
            "required": ["end_date", "evaluation_mode", "month", "start_date", "vacancy_count"],
            "properties": {
                "month": {"type": "string", "example": "MARCH"},
                "start_date": {"type": "string", "example": "2026-03-01"},
                "end_date": {"type": "string", "example": "2026-03-15"},
                "vacancy_count": {"type": "integer", "example": 20},
                "evaluation_mode": {"type": "string", "enum": ["WEIGHTED_AVERAGE", "SOCIOECONOMIC", "MIXED"]}
            }
        },
        "domain.ApplyRequest": {
            "type": "object",
            "required": ["call_id", "course_ids"],
            "properties": {
                "call_id": {"type": "integer"},
                "course_ids": {"type": "array", "maxItems": 3, "minItems": 1, "items": {"type": "integer"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {},
                "request_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Scholarship Calls API",
	Description:      "Scholarship calls, applications and applicant ranking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
