package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Performance Review API",
        "description": "Review cycles, weighted KRA scoring and review submissions",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Review Cycles", "description": "Review cycle lifecycle and windows"},
        {"name": "Reviews", "description": "Self review, manager review and check-in submissions"},
        {"name": "Reports", "description": "Cycle review report exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/v1/organisations/{orgId}/review-cycles": {
            "get": {
                "tags": ["Review Cycles"],
                "summary": "List review cycles for an organisation",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "publish", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/organisations/{orgId}/review-cycles/active": {
            "get": {
                "tags": ["Review Cycles"],
                "summary": "Get the active review cycle",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "Override organisation-local date (YYYY-MM-DD)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active review cycle"}
                }
            }
        },
        "/api/v1/organisations/{orgId}/review-submission-started": {
            "get": {
                "tags": ["Review Cycles"],
                "summary": "Whether review submission has started",
                "parameters": [
                    {"name": "orgId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "Override organisation-local date (YYYY-MM-DD)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/review-cycles": {
            "post": {
                "tags": ["Review Cycles"],
                "summary": "Create review cycle",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewCycleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid dates or incomplete KRA setup"},
                    "409": {"description": "Overlapping or conflicting active cycle"}
                }
            }
        },
        "/api/v1/review-cycles/{id}": {
            "get": {
                "tags": ["Review Cycles"],
                "summary": "Get review cycle by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Review Cycles"],
                "summary": "Update review cycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewCycleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid dates or incomplete KRA setup"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Overlapping or conflicting active cycle"}
                }
            }
        },
        "/api/v1/review-cycles/{id}/unpublish": {
            "post": {
                "tags": ["Review Cycles"],
                "summary": "Unpublish a review cycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/review-cycles/{id}/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download cycle review report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/reviews": {
            "get": {
                "tags": ["Reviews"],
                "summary": "List review details",
                "parameters": [
                    {"name": "cycleId", "in": "query", "required": true, "type": "string"},
                    {"name": "type", "in": "query", "required": true, "type": "integer"},
                    {"name": "toId", "in": "query", "type": "string"},
                    {"name": "fromIds", "in": "query", "type": "string", "description": "Comma-separated reviewer ids"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reviews"],
                "summary": "Save or submit a review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure or deadline passed"},
                    "404": {"description": "No active review cycle"}
                }
            }
        },
        "/api/v1/reviews/{id}": {
            "get": {
                "tags": ["Reviews"],
                "summary": "Get review details by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "ReviewCycleRequest": {
            "type": "object",
            "required": ["organisation_id", "name", "start_date", "end_date", "self_review_start_date", "self_review_end_date", "manager_review_start_date", "manager_review_end_date", "check_in_start_date", "check_in_end_date"],
            "properties": {
                "organisation_id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "self_review_start_date": {"type": "string", "format": "date-time"},
                "self_review_end_date": {"type": "string", "format": "date-time"},
                "manager_review_start_date": {"type": "string", "format": "date-time"},
                "manager_review_end_date": {"type": "string", "format": "date-time"},
                "check_in_start_date": {"type": "string", "format": "date-time"},
                "check_in_end_date": {"type": "string", "format": "date-time"},
                "publish": {"type": "boolean"},
                "notify_employees": {"type": "boolean"}
            }
        },
        "SaveReviewRequest": {
            "type": "object",
            "required": ["organisation_id", "review_type_id", "review_to_id", "review_from_id", "reviews"],
            "properties": {
                "organisation_id": {"type": "string"},
                "review_type_id": {"type": "integer", "enum": [1, 2, 3]},
                "review_to_id": {"type": "string"},
                "review_from_id": {"type": "string"},
                "draft": {"type": "boolean"},
                "published": {"type": "boolean"},
                "reviews": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ReviewItem"}
                }
            }
        },
        "ReviewItem": {
            "type": "object",
            "required": ["kra_id", "rating"],
            "properties": {
                "kra_id": {"type": "string"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "review": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
