// Package docs registers the OpenAPI document served under /swagger.
// Regenerate the schema section with swag init after changing handler annotations.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.1.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "servers": [{"url": "/api/v1"}],
  "paths": {
    "/settlements/quote": {
      "post": {
        "tags": ["settlement"],
        "summary": "Price a cart against tendered payments",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "400": {"$ref": "#/components/responses/Error"},
          "422": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/settlements/reconcile": {
      "post": {
        "tags": ["settlement"],
        "summary": "Compare tendered payments with a final total",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "400": {"$ref": "#/components/responses/Error"},
          "422": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/sales": {
      "post": {
        "tags": ["settlement"],
        "summary": "Commit a balanced sale",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "201": {"$ref": "#/components/responses/Success"},
          "409": {"$ref": "#/components/responses/Error"},
          "422": {"$ref": "#/components/responses/Error"},
          "429": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/exchange-rates": {
      "post": {
        "tags": ["exchange-rate"],
        "summary": "Record a new active exchange rate",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "201": {"$ref": "#/components/responses/Success"},
          "409": {"$ref": "#/components/responses/Error"},
          "422": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/exchange-rates/active": {
      "get": {
        "tags": ["exchange-rate"],
        "summary": "Get the active rate of a source",
        "parameters": [{"name": "source", "in": "query", "schema": {"type": "string"}}],
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "422": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/exchange-rates/history": {
      "get": {
        "tags": ["exchange-rate"],
        "summary": "List recorded rates, newest first",
        "parameters": [
          {"name": "source", "in": "query", "schema": {"type": "string"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer"}}
        ],
        "responses": {"200": {"$ref": "#/components/responses/Success"}}
      }
    },
    "/payment-instruments": {
      "get": {
        "tags": ["payment-plan"],
        "summary": "List payment instruments",
        "responses": {"200": {"$ref": "#/components/responses/Success"}}
      }
    },
    "/payment-instruments/{id}/tiers": {
      "get": {
        "tags": ["payment-plan"],
        "summary": "List installment tiers of an instrument",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/payment-instruments/{id}/multiplier": {
      "get": {
        "tags": ["payment-plan"],
        "summary": "Get the surcharge multiplier for an installment count",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}},
          {"name": "installments", "in": "query", "schema": {"type": "integer", "default": 1}}
        ],
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/commission-rules": {
      "get": {
        "tags": ["commission"],
        "summary": "List commission rules",
        "responses": {"200": {"$ref": "#/components/responses/Success"}}
      },
      "post": {
        "tags": ["commission"],
        "summary": "Create a commission rule",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "201": {"$ref": "#/components/responses/Success"},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/commission-rules/resolve": {
      "post": {
        "tags": ["commission"],
        "summary": "Resolve the commission of a product",
        "requestBody": {"$ref": "#/components/requestBodies/Json"},
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "422": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/reports/seller-commissions": {
      "get": {
        "tags": ["report"],
        "summary": "Seller commission report over [start_date, end_date)",
        "parameters": [
          {"name": "start_date", "in": "query", "required": true, "schema": {"type": "string"}},
          {"name": "end_date", "in": "query", "required": true, "schema": {"type": "string"}},
          {"name": "rate_source", "in": "query", "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"$ref": "#/components/responses/Success"},
          "400": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/system/info": {
      "get": {"tags": ["system"], "summary": "System information", "responses": {"200": {"$ref": "#/components/responses/Success"}}}
    },
    "/system/ping": {
      "get": {"tags": ["system"], "summary": "Ping", "responses": {"200": {"$ref": "#/components/responses/Success"}}}
    }
  },
  "components": {
    "requestBodies": {
      "Json": {"required": true, "content": {"application/json": {"schema": {"type": "object"}}}}
    },
    "responses": {
      "Success": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}},
      "Error": {"description": "Error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}}
    },
    "schemas": {
      "Response": {
        "type": "object",
        "properties": {
          "success": {"type": "boolean"},
          "data": {},
          "error": {"$ref": "#/components/schemas/ErrorInfo"},
          "meta": {"type": "object", "properties": {"total": {"type": "integer"}, "limit": {"type": "integer"}}}
        }
      },
      "ErrorInfo": {
        "type": "object",
        "properties": {
          "code": {"type": "string"},
          "message": {"type": "string"},
          "request_id": {"type": "string"},
          "timestamp": {"type": "string", "format": "date-time"},
          "details": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}}}
        }
      }
    }
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Phone Store Pricing API",
	Description:      "Pricing, financing and commission computation for the phone store back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
