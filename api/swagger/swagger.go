package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Scheduler API",
        "description": "AI-assisted course schedule generation and discovery API",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Schedule generation, conflict checks and views"},
        {"name": "Search", "description": "Course discovery and suggestions"},
        {"name": "Exports", "description": "Schedule export rendering and download"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate schedule options",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No Sections Available", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/courses/{courseId}/sections": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List parsed sections for a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "season_code", "in": "query", "type": "string"},
                    {"name": "include_full", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid Season", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/conflicts": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Detect conflicts in a set of sections",
                "parameters": [
                    {"name": "season_code", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/optimize": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Re-optimize an existing schedule",
                "parameters": [
                    {"name": "season_code", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/summary": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Compute summary statistics and a weekly grid",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleSummaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/preferences": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List supported preferences and constraints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/health": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Report scheduler component health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/cache/{seasonCode}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Drop cached catalog data for a season",
                "parameters": [
                    {"name": "seasonCode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid Season", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Render a schedule option to PDF or CSV",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid Export Format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/export/{token}/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Stream a previously exported schedule artifact",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Export Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search/courses": {
            "post": {
                "tags": ["Search"],
                "summary": "Search courses by natural language or structured query",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SearchCoursesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search/courses/{courseId}": {
            "get": {
                "tags": ["Search"],
                "summary": "Fetch one course with sections and similar courses",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "season_code", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search/suggestions": {
            "post": {
                "tags": ["Search"],
                "summary": "Suggest search completions for a partial query",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search/seasons": {
            "get": {
                "tags": ["Search"],
                "summary": "List known academic seasons",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search/filters": {
            "get": {
                "tags": ["Search"],
                "summary": "List the static search filter catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScheduleRequest": {
            "type": "object",
            "properties": {
                "course_ids": {"type": "array", "items": {"type": "string"}},
                "season_code": {"type": "string"},
                "constraints": {"$ref": "#/definitions/ScheduleConstraints"},
                "preferences": {"$ref": "#/definitions/SchedulePreferences"},
                "max_options": {"type": "integer"},
                "include_full_sections": {"type": "boolean"},
                "allow_conflicts": {"type": "boolean"}
            },
            "required": ["course_ids", "season_code"]
        },
        "ScheduleConstraints": {
            "type": "object",
            "properties": {
                "min_credits": {"type": "number"},
                "max_credits": {"type": "number"},
                "max_gap_minutes": {"type": "integer"},
                "no_early_morning": {"type": "boolean"},
                "no_late_evening": {"type": "boolean"},
                "preferred_days": {"type": "array", "items": {"type": "string"}},
                "avoid_times": {"type": "array", "items": {"type": "string"}},
                "break_hours": {"type": "array", "items": {"type": "string"}},
                "min_quality_score": {"type": "number"}
            }
        },
        "SchedulePreferences": {
            "type": "object",
            "properties": {
                "workload_weight": {"type": "number"},
                "rating_weight": {"type": "number"},
                "time_preference_weight": {"type": "number"},
                "professor_weight": {"type": "number"},
                "preferred_professors": {"type": "array", "items": {"type": "string"}},
                "avoided_professors": {"type": "array", "items": {"type": "string"}},
                "preferred_time_blocks": {"type": "array", "items": {"type": "string"}},
                "avoid_time_blocks": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ScheduleOption": {
            "type": "object",
            "properties": {
                "sections": {"type": "array", "items": {"type": "object"}},
                "total_credits": {"type": "number"},
                "quality_score": {"type": "number"},
                "conflicts": {"type": "array", "items": {"type": "string"}},
                "metadata": {"type": "object"}
            }
        },
        "GeneratedSchedule": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "season_code": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/ScheduleOption"}},
                "total_options_generated": {"type": "integer"},
                "processing_time_ms": {"type": "integer"},
                "metadata": {"type": "object"}
            }
        },
        "ConflictCheckRequest": {
            "type": "object",
            "properties": {
                "sections": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["sections"]
        },
        "ScheduleConflict": {
            "type": "object",
            "properties": {
                "section1_id": {"type": "string"},
                "section2_id": {"type": "string"},
                "conflict_type": {"type": "string"},
                "details": {"type": "string"},
                "severity": {"type": "string"}
            }
        },
        "OptimizeScheduleRequest": {
            "type": "object",
            "properties": {
                "sections": {"type": "array", "items": {"type": "object"}},
                "preferences": {"$ref": "#/definitions/SchedulePreferences"}
            },
            "required": ["sections"]
        },
        "ScheduleSummaryRequest": {
            "type": "object",
            "properties": {
                "sections": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["sections"]
        },
        "SearchCoursesRequest": {
            "type": "object",
            "properties": {
                "user_query": {"type": "string"},
                "structured_query": {"type": "object"},
                "use_ai_parsing": {"type": "boolean"},
                "season_code": {"type": "string"},
                "max_results": {"type": "integer"}
            }
        },
        "SuggestionRequest": {
            "type": "object",
            "properties": {
                "partial_query": {"type": "string"},
                "season_code": {"type": "string"},
                "limit": {"type": "integer"}
            },
            "required": ["partial_query"]
        },
        "ExportScheduleRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["pdf", "csv"]},
                "option": {"$ref": "#/definitions/ScheduleOption"},
                "season_code": {"type": "string"},
                "title": {"type": "string"}
            },
            "required": ["format", "option"]
        },
        "ExportScheduleResponse": {
            "type": "object",
            "properties": {
                "export_id": {"type": "string"},
                "format": {"type": "string"},
                "download_url": {"type": "string"},
                "expires_at": {"type": "string"},
                "size_bytes": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
