package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Competgrade API",
        "description": "Grading panel backend: rosters, grades, comments and certification checklists",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Grading", "description": "Roster listing, grade upsert/delete, exports"},
        {"name": "Comments", "description": "Self and appraiser feedback"},
        {"name": "Certifications", "description": "Read-only certification checklist"},
        {"name": "Rubric", "description": "Scripts and criteria management"},
        {"name": "Activities", "description": "Activity lifecycle"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{activityId}/userlist": {
            "get": {
                "tags": ["Grading"],
                "summary": "List gradeable users with their global grade",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "groupid", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Roster"}},
                    "404": {"description": "Unknown activity"}
                }
            }
        },
        "/activities/{activityId}/grade": {
            "post": {
                "tags": ["Grading"],
                "summary": "Insert or update a grade",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Returns the grade id to echo on the next save"}
                }
            }
        },
        "/activities/{activityId}/deletegrade": {
            "post": {
                "tags": ["Grading"],
                "summary": "Delete the grade in a slot",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Empty slot"}
                }
            }
        },
        "/activities/{activityId}/export": {
            "get": {
                "tags": ["Grading"],
                "summary": "Export the roster as CSV or PDF",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "groupid", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Grading"],
                "summary": "Download an archived export via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/activities/{activityId}/users/{userId}/comments": {
            "get": {
                "tags": ["Comments"],
                "summary": "List a user's comments split into self and appraiser buckets",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CommentGroups"}}
                }
            }
        },
        "/activities/{activityId}/comment": {
            "post": {
                "tags": ["Comments"],
                "summary": "Insert or update a comment",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveCommentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Returns the comment id to echo on the next save"}
                }
            }
        },
        "/comments/{commentId}/delete": {
            "post": {
                "tags": ["Comments"],
                "summary": "Delete a comment",
                "parameters": [
                    {"name": "commentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown comment"}
                }
            }
        },
        "/activities/{activityId}/users/{userId}/comment": {
            "get": {
                "tags": ["Comments"],
                "summary": "Fetch the single comment in a slot, or an empty placeholder",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "type", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/activities/{activityId}/users/{userId}/certification": {
            "get": {
                "tags": ["Certifications"],
                "summary": "Certification checklist for a user",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"},
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/activities/{activityId}/rubric": {
            "get": {
                "tags": ["Rubric"],
                "summary": "List scripts with nested criteria",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/activities/{activityId}/scripts": {
            "post": {
                "tags": ["Rubric"],
                "summary": "Insert or update a script",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scripts/{scriptId}": {
            "delete": {
                "tags": ["Rubric"],
                "summary": "Delete a script and its criteria",
                "parameters": [
                    {"name": "scriptId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/activities/{activityId}/criteria": {
            "post": {
                "tags": ["Rubric"],
                "summary": "Insert or update a criterium",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/criteria/{criteriumId}": {
            "delete": {
                "tags": ["Rubric"],
                "summary": "Delete a criterium",
                "parameters": [
                    {"name": "criteriumId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/activities/{activityId}": {
            "get": {
                "tags": ["Activities"],
                "summary": "Fetch an activity",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Activities"],
                "summary": "Delete an activity and all dependent records",
                "parameters": [
                    {"name": "activityId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SaveGradeRequest": {
            "type": "object",
            "properties": {
                "competgrade": {"type": "integer"},
                "criterium": {"type": "integer"},
                "gradeid": {"type": "integer"},
                "userid": {"type": "integer"},
                "grade": {"type": "integer"}
            },
            "required": ["userid"]
        },
        "SaveCommentRequest": {
            "type": "object",
            "properties": {
                "commentid": {"type": "integer"},
                "competgrade": {"type": "integer"},
                "userid": {"type": "integer"},
                "type": {"type": "integer"},
                "commenttitle": {"type": "string"},
                "commenttext": {"type": "string"}
            },
            "required": ["userid", "type"]
        },
        "RosterEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "fullname": {"type": "string"},
                "firstname": {"type": "string"},
                "lastname": {"type": "string"},
                "idnumber": {"type": "string"},
                "email": {"type": "string"},
                "picture": {"type": "string"},
                "picturelarge": {"type": "string"},
                "gradeid": {"type": "integer"},
                "grade": {"type": "integer"}
            }
        },
        "Roster": {
            "type": "object",
            "properties": {
                "success": {"type": "integer"},
                "userlist": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RosterEntry"}
                }
            }
        },
        "CommentGroups": {
            "type": "object",
            "properties": {
                "usercomments": {"type": "array", "items": {"type": "object"}},
                "appraisercomments": {"type": "array", "items": {"type": "object"}}
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
