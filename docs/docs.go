// Package docs registers the MediaGate OpenAPI document with swag.
// Regenerate with `swag init -g cmd/api/main.go`.
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
        "/media": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "List media files",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid query"}, "502": {"description": "Media API failure"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Upload a media file",
                "responses": {"201": {"description": "Created"}, "403": {"description": "Permission denied"}, "422": {"description": "Validation failed"}}
            }
        },
        "/media/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Upload several media files",
                "responses": {"201": {"description": "Created"}, "403": {"description": "Permission denied"}, "422": {"description": "Validation failed"}}
            }
        },
        "/media/bulk-delete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Delete several media files",
                "responses": {"200": {"description": "OK"}, "422": {"description": "No IDs given"}}
            }
        },
        "/media/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Get media statistics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/media/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Validate files before upload",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request body"}}
            }
        },
        "/media/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Get a media file",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not visible to the caller"}, "404": {"description": "Media not found"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Update media metadata",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Permission denied"}, "404": {"description": "Media not found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["media"],
                "summary": "Delete a media file",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Media deleted"}, "403": {"description": "Permission denied"}}
            }
        },
        "/media/{id}/permissions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "Get the caller's permissions on a media file",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/media/{id}/attach": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["media"],
                "summary": "Attach a media file to a model",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Media attached"}}
            }
        },
        "/media/{id}/detach": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["media"],
                "summary": "Detach a media file from a model",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "Media detached"}}
            }
        },
        "/models/{type}/{id}/media": {
            "get": {
                "produces": ["application/json"],
                "tags": ["media"],
                "summary": "List media attached to a model",
                "parameters": [
                    {"type": "string", "name": "type", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/permissions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["permissions"],
                "summary": "Get the caller's upload capabilities",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer access token issued to dashboard administrators",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "MediaGate API",
	Description:      "Permission-gated, validated access to the tenant media API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
