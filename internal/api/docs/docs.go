// Package docs registers the console's OpenAPI document with swag so
// echo-swagger can serve it under /swagger/.
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
        "/api/auth/signin": {
            "post": {
                "description": "Validates the credentials, calls the authentication service and signs the session in. The response carries the destination route for the primary role.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.signInRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.signInResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/routes": {
            "get": {
                "description": "Returns the routes the current session may navigate. With ?path= the matched chain is included.",
                "produces": ["application/json"],
                "tags": ["routes"],
                "summary": "Route tree",
                "parameters": [
                    {"type": "string", "description": "Path to match against the tree", "name": "path", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.routesResponse"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Person": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "surname": {"type": "string"},
                "lastname": {"type": "string"}
            }
        },
        "domain.Role": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "domain.UserRecord": {
            "type": "object",
            "properties": {
                "person": {"$ref": "#/definitions/domain.Person"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/domain.Role"}}
            }
        },
        "domain.SessionState": {
            "type": "object",
            "properties": {
                "signed": {"type": "boolean"},
                "user": {"$ref": "#/definitions/domain.UserRecord"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/domain.Role"}}
            }
        },
        "routing.View": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "routing.Route": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "view": {"$ref": "#/definitions/routing.View"},
                "children": {"type": "array", "items": {"$ref": "#/definitions/routing.Route"}}
            }
        },
        "handler.matchResponse": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "chain": {"type": "array", "items": {"$ref": "#/definitions/routing.Route"}},
                "not_found": {"type": "boolean"}
            }
        },
        "handler.routesResponse": {
            "type": "object",
            "properties": {
                "routes": {"type": "array", "items": {"$ref": "#/definitions/routing.Route"}},
                "match": {"$ref": "#/definitions/handler.matchResponse"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "signed": {"type": "boolean"},
                "user": {"$ref": "#/definitions/domain.UserRecord"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/domain.Role"}},
                "identity": {"type": "string"}
            }
        },
        "handler.signInRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "erielit"},
                "password": {"type": "string", "example": "secret"}
            }
        },
        "handler.signInResponse": {
            "type": "object",
            "properties": {
                "destination": {"type": "string"},
                "path": {"type": "string"},
                "token": {"type": "string"},
                "session": {"$ref": "#/definitions/domain.SessionState"},
                "routes": {"type": "array", "items": {"$ref": "#/definitions/routing.Route"}}
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
	Title:            "Almacen admin console",
	Description:      "Sign-in, session and role-based route resolution for the Almacen admin console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
