package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Activity Server API",
        "description": "Notebook activity submission and grading service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Submissions", "description": "Notebook submission and grading"},
        {"name": "Activities", "description": "Activity lifecycle and listing"},
        {"name": "Instructors", "description": "Instructor registration and linking"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/submit": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a notebook for grading",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "user", "in": "formData", "type": "string", "required": true},
                    {"name": "name", "in": "formData", "type": "string", "required": true},
                    {"name": "activity", "in": "formData", "type": "string", "required": true},
                    {"name": "email", "in": "formData", "type": "string"},
                    {"name": "prequiz_token", "in": "formData", "type": "string"},
                    {"name": "postquiz_token", "in": "formData", "type": "string"},
                    {"name": "notebook", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Submission received"},
                    "404": {"description": "Activity not found"}
                }
            }
        },
        "/api/activity": {
            "post": {
                "tags": ["Activities"],
                "summary": "Create a new activity",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "activity_id", "in": "formData", "type": "string", "required": true},
                    {"name": "activity_name", "in": "formData", "type": "string", "required": true},
                    {"name": "enabled", "in": "formData", "type": "boolean"},
                    {"name": "grading_notebook", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Created"},
                    "400": {"description": "Activity already exists"}
                }
            }
        },
        "/api/activity/{activity_id}": {
            "patch": {
                "tags": ["Activities"],
                "summary": "Rename or enable/disable an activity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "activity_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Activity not found"}
                }
            },
            "delete": {
                "tags": ["Activities"],
                "summary": "Delete an activity and its submissions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "activity_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Activity not found"}
                }
            }
        },
        "/api/activity/{activity_id}/export": {
            "get": {
                "tags": ["Activities"],
                "summary": "Export the activity submission report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "activity_id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Access denied to this activity"}
                }
            }
        },
        "/api/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activities with counts",
                "parameters": [
                    {"name": "enabled_only", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Activity summaries"}
                }
            }
        },
        "/api/activities/by-email/{email}": {
            "get": {
                "tags": ["Activities"],
                "summary": "List enabled activities a student email submitted to",
                "parameters": [
                    {"name": "email", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Activity references"}
                }
            }
        },
        "/api/instructor": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Add an instructor to an activity",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Linked"},
                    "404": {"description": "Activity not found"}
                }
            }
        },
        "/api/score": {
            "put": {
                "tags": ["Submissions"],
                "summary": "Update the score for a submission's latest attempt",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Score updated"},
                    "404": {"description": "Submission not found"}
                }
            }
        },
        "/api/submissions/{activity_id}/{user}/attempts": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List the grading history for a submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "activity_id", "in": "path", "type": "string", "required": true},
                    {"name": "user", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Attempt metadata"},
                    "404": {"description": "Submission not found"}
                }
            }
        },
        "/download/{activity_id}/{user}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Download a student's notebook",
                "parameters": [
                    {"name": "activity_id", "in": "path", "type": "string", "required": true},
                    {"name": "user", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true},
                    {"name": "attempt", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Notebook stream"},
                    "401": {"description": "Authentication required"},
                    "403": {"description": "Access denied"},
                    "404": {"description": "Submission not found"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"}
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
