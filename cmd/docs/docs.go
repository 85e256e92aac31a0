// Package docs registers the swagger spec served under /swagger.
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
        "/accounts/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get the caller's account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        },
        "/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["events"],
                "summary": "Live event stream",
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}}
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "string", "description": "Owner filter", "name": "userId", "in": "query"},
                    {"type": "integer", "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Token from the previous page", "name": "nextToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Record a transaction",
                "parameters": [
                    {"description": "Transaction details", "name": "transaction", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "403": {"description": "Loan access restricted to members", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get a transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction id or transactionId", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        },
        "/transactions/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Change a transaction's status",
                "parameters": [
                    {"type": "string", "description": "Transaction id or transactionId", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateTransactionStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "403": {"description": "admin only", "schema": {"$ref": "#/definitions/dto.Envelope"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "dto.Envelope": {
            "type": "object",
            "properties": {
                "isOk": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "dto.CreateTransactionRequest": {
            "type": "object",
            "properties": {
                "transactionId": {"type": "string"},
                "type": {"type": "string", "example": "deposit"},
                "amount": {"type": "number"},
                "loanAmount": {"type": "number"},
                "currency": {"type": "string"},
                "status": {"type": "string", "example": "Pending"},
                "timestamp": {"type": "string", "format": "date-time"},
                "collateralBTC": {"type": "number"},
                "repaymentPeriod": {"type": "integer"},
                "interestRate": {"type": "number"},
                "description": {"type": "string"},
                "withdrawalAddress": {"type": "string"},
                "network": {"type": "string"},
                "userId": {"type": "string"},
                "userName": {"type": "string"},
                "userEmail": {"type": "string"}
            }
        },
        "dto.UpdateTransactionStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Completed"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	Title:            "Vault Ledger API",
	Description:      "Transaction lifecycle and balance reconciliation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
