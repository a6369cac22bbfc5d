package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Flightline API",
        "description": "Flight-training session booking: availability posting, lane-packed week grid, conflict-checked bookings and ranked rosters",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Student availability postings and the packed week grid"},
        {"name": "Bookings", "description": "Session booking lifecycle"},
        {"name": "Roster", "description": "Ranked student roster"},
        {"name": "Students", "description": "Student session history"},
        {"name": "Exports", "description": "Weekly booking sheets"}
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
        "/courses/{id}/students/{sid}/availability": {
            "put": {
                "tags": ["Availability"],
                "summary": "Replace a student's week postings",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "sid", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PostAvailabilityRequest"}}
                ],
                "responses": {
                    "204": {"description": "Replaced"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Packed week grid",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "week", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlapping booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Fetch a booking",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Cancelled"}
                }
            }
        },
        "/bookings/{id}/no-show": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Record a student no-show",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Recorded"}
                }
            }
        },
        "/courses/{id}/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Ranked roster",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "strategy", "in": "query", "type": "string", "enum": ["score", "availability"]},
                    {"name": "filter", "in": "query", "type": "string", "enum": ["active", "onhold", "suspended", "graduates"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/logbook": {
            "get": {
                "tags": ["Students"],
                "summary": "Session logbook",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/bookings/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the week's bookings",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Sheet download"}
                }
            }
        }
    },
    "definitions": {
        "SlotInterval": {
            "type": "object",
            "properties": {
                "start_at": {"type": "string", "format": "date-time"},
                "end_at": {"type": "string", "format": "date-time"}
            }
        },
        "PostAvailabilityRequest": {
            "type": "object",
            "required": ["year", "week"],
            "properties": {
                "year": {"type": "integer"},
                "week": {"type": "integer"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/SlotInterval"}}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["course_id", "student_id", "exercise_id", "start_at", "end_at"],
            "properties": {
                "course_id": {"type": "string"},
                "student_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "exercise_id": {"type": "string"},
                "start_at": {"type": "string", "format": "date-time"},
                "end_at": {"type": "string", "format": "date-time"},
                "confirmed": {"type": "boolean"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
