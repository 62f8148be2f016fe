// Package docs registers the portal's OpenAPI description with swag.
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
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/session/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign up",
                "parameters": [
                    {"description": "Signup form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.validateResponse"}}
                }
            }
        },
        "/session/logout": {
            "post": {
                "tags": ["session"],
                "summary": "Log out",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/session/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/session/route": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Landing area",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.routeResponse"}}}
            }
        },
        "/signup/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signup"],
                "summary": "Validate signup form",
                "parameters": [
                    {"description": "Form snapshot", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.validateRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.validateResponse"}}}
            }
        },
        "/signup/password-strength": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signup"],
                "summary": "Password strength",
                "parameters": [
                    {"description": "Candidate password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.strengthRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PasswordStrength"}}}
            }
        },
        "/password/forgot": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["password"],
                "summary": "Request reset code",
                "parameters": [
                    {"description": "Account email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.forgotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}}
                }
            }
        },
        "/password/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["password"],
                "summary": "Verify reset code",
                "parameters": [
                    {"description": "Email and code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.verifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}}
                }
            }
        },
        "/password/reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["password"],
                "summary": "Reset password",
                "parameters": [
                    {"description": "Email, code and new password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.RecoveryResult"}}
                }
            }
        }
    },
    "definitions": {
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "onboarding_stage": {"type": "string"}
            }
        },
        "domain.PasswordStrength": {
            "type": "object",
            "properties": {
                "score": {"type": "integer"},
                "missing_criteria": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"}
            }
        },
        "domain.RecoveryResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.signupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirm_password": {"type": "string"},
                "accept_policy": {"type": "boolean"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "user": {"$ref": "#/definitions/domain.User"},
                "target": {"type": "string", "enum": ["role-selection", "dashboard", "onboarding"]},
                "message": {"type": "string"}
            }
        },
        "handler.routeResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "target": {"type": "string"},
                "phase": {"type": "string"}
            }
        },
        "handler.validateRequest": {
            "type": "object",
            "properties": {
                "values": {"type": "object", "additionalProperties": {"type": "string"}},
                "touched": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "submit": {"type": "boolean"},
                "accept_policy": {"type": "boolean"}
            }
        },
        "handler.validateResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "handler.strengthRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "handler.forgotRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}}
        },
        "handler.verifyRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string"}
            }
        },
        "handler.resetRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string"},
                "password": {"type": "string"},
                "confirm_password": {"type": "string"}
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
	Title:            "Talentloop Portal API",
	Description:      "Session, signup and onboarding routing for the hiring portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
