// Package docs registers the generated Swagger specification with
// gin-swagger. Regenerate with:
//
//	swag init -g cmd/server/main.go -o docs
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
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List all known users",
                "operationId": "listUsers",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ListUsersResponse"}
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Fetch one user by LINE user id",
                "operationId": "getUser",
                "parameters": [
                    {"type": "string", "description": "LINE user id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/domain.User"}
                    },
                    "404": {
                        "description": "User not found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/users/{id}/history": {
            "get": {
                "description": "Returns up to limit turns in chronological order.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Fetch a user's conversation history",
                "operationId": "getUserHistory",
                "parameters": [
                    {"type": "string", "description": "LINE user id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 20, "description": "Maximum turns returned", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.HistoryResponse"}
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/push": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Send"],
                "summary": "Push a text message to one user",
                "operationId": "pushMessage",
                "parameters": [
                    {"description": "Push payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PushRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.SendResponse"}
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Send failed",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/multicast": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Send"],
                "summary": "Send a text message to a list of users",
                "operationId": "multicastMessage",
                "parameters": [
                    {"description": "Multicast payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.MulticastRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.SendResponse"}
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Send failed",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/broadcast": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Send"],
                "summary": "Broadcast a text message to every friend of the bot",
                "operationId": "broadcastMessage",
                "parameters": [
                    {"description": "Broadcast payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BroadcastRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.SendResponse"}
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "500": {
                        "description": "Send failed",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Turn": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "line_user_id": {"type": "string"},
                "role": {"type": "string"},
                "content": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "line_user_id": {"type": "string"},
                "display_name": {"type": "string"},
                "picture_url": {"type": "string"},
                "status": {"type": "string"},
                "registration_code": {"type": "string"},
                "registered_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.BroadcastRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.HistoryResponse": {
            "type": "object",
            "properties": {
                "history": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/domain.Turn"}
                }
            }
        },
        "handlers.ListUsersResponse": {
            "type": "object",
            "properties": {
                "users": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/domain.User"}
                }
            }
        },
        "handlers.MulticastRequest": {
            "type": "object",
            "required": ["user_ids", "message"],
            "properties": {
                "user_ids": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "message": {"type": "string"}
            }
        },
        "handlers.PushRequest": {
            "type": "object",
            "required": ["user_id", "message"],
            "properties": {
                "user_id": {"type": "string", "example": "U4af4980629..."},
                "message": {"type": "string", "example": "สวัสดีครับ"}
            }
        },
        "handlers.SendResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "message sent"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LINE Bot Backend API",
	Description:      "Webhook-driven LINE chat relay with Gemini-generated replies, a user directory, and registration-code onboarding.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
