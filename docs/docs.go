// Package docs holds the registered swagger document served at /swagger/*.
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
        "/me": {
            "get": {
                "tags": [
                    "identity"
                ],
                "summary": "Current identity",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.Identity"
                        }
                    },
                    "401": {
                        "description": "Not signed in",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "description": "Returns the identity carried by the bearer token",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/tasks": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "List tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/http.TaskResponse"
                                    }
                                },
                                "total": {
                                    "type": "integer"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid view",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "description": "Tasks in a view, optionally searched, highest priority first then soonest due",
                "parameters": [
                    {
                        "type": "string",
                        "enum": [
                            "all",
                            "active",
                            "completed"
                        ],
                        "description": "Task view",
                        "name": "view",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Alias of view",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Search over title and description",
                        "name": "q",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Create a new task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/http.TaskResponse"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Rejected by the records store",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "description": "New tasks start active; priority defaults to medium",
                "parameters": [
                    {
                        "description": "ports.CreateTaskRequest data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.CreateTaskRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/tasks/stats": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Task counts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.TaskStats"
                        }
                    }
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Get task by ID",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/http.TaskResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "tasks"
                ],
                "summary": "Update a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/http.TaskResponse"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Rejected by the records store",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "description": "Replaces the task's fields; an Id in the body is ignored",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "ports.UpdateTaskRequest data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.UpdateTaskRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "tags": [
                    "tasks"
                ],
                "summary": "Delete a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/http.TaskResponse"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/tasks/{id}/toggle": {
            "patch": {
                "tags": [
                    "tasks"
                ],
                "summary": "Toggle task status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/http.TaskResponse"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "description": "Flips a task between active and completed",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/contacts": {
            "get": {
                "tags": [
                    "contacts"
                ],
                "summary": "List or search contacts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/entities.Contact"
                                    }
                                },
                                "total": {
                                    "type": "integer"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    }
                },
                "description": "A non-blank q matches name, email, role or department",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Search text",
                        "name": "q",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "tags": [
                    "contacts"
                ],
                "summary": "Add a contact",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/entities.Contact"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Rejected by the records store",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "ports.CreateContactRequest data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.CreateContactRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/contacts/{id}": {
            "get": {
                "tags": [
                    "contacts"
                ],
                "summary": "Get contact by ID",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/entities.Contact"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "contacts"
                ],
                "summary": "Update a contact",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/entities.Contact"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "ports.UpdateContactRequest data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.UpdateContactRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "tags": [
                    "contacts"
                ],
                "summary": "Delete a contact",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "$ref": "#/definitions/entities.Contact"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/discounts": {
            "get": {
                "tags": [
                    "discounts"
                ],
                "summary": "List discounts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "data": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/http.DiscountResponse"
                                    }
                                },
                                "total": {
                                    "type": "integer"
                                },
                                "notice": {
                                    "$ref": "#/definitions/ports.Notice"
                                }
                            }
                        }
                    }
                },
                "description": "One view: all, active, or a category name, soonest-expiring first",
                "parameters": [
                    {
                        "type": "string",
                        "description": "all, active or a category",
                        "name": "filter",
                        "in": "query"
                    }
                ]
            }
        },
        "/discounts/categories": {
            "get": {
                "tags": [
                    "discounts"
                ],
                "summary": "Discount category tabs",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.DiscountSummary"
                        }
                    }
                },
                "description": "Total and active counts plus each category with its count"
            }
        },
        "/discounts/{id}": {
            "get": {
                "tags": [
                    "discounts"
                ],
                "summary": "Get discount by ID",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/http.DiscountResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Record identifier",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "fields": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/entities.FieldError"
                    }
                }
            }
        },
        "entities.FieldError": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "http.TaskResponse": {
            "type": "object",
            "properties": {
                "Id": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "dueDate": {
                    "type": "string",
                    "format": "date"
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "active",
                        "completed"
                    ]
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "overdue": {
                    "type": "boolean"
                }
            }
        },
        "http.DiscountResponse": {
            "type": "object",
            "properties": {
                "Id": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "discount": {
                    "type": "string"
                },
                "expiryDate": {
                    "type": "string",
                    "format": "date"
                },
                "category": {
                    "type": "string"
                },
                "url": {
                    "type": "string"
                },
                "expired": {
                    "type": "boolean"
                }
            }
        },
        "entities.Contact": {
            "type": "object",
            "properties": {
                "Id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "department": {
                    "type": "string",
                    "enum": [
                        "Engineering",
                        "Product",
                        "Design",
                        "Marketing",
                        "Sales",
                        "Operations",
                        "HR",
                        "Finance"
                    ]
                },
                "addedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "ports.CreateTaskRequest": {
            "type": "object",
            "required": [
                "title",
                "dueDate"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "dueDate": {
                    "type": "string",
                    "format": "date"
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "ports.UpdateTaskRequest": {
            "type": "object",
            "required": [
                "title",
                "dueDate"
            ],
            "properties": {
                "Id": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "dueDate": {
                    "type": "string",
                    "format": "date"
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "active",
                        "completed"
                    ]
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "ports.CreateContactRequest": {
            "type": "object",
            "required": [
                "name",
                "email",
                "phone",
                "role",
                "department"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "department": {
                    "type": "string",
                    "enum": [
                        "Engineering",
                        "Product",
                        "Design",
                        "Marketing",
                        "Sales",
                        "Operations",
                        "HR",
                        "Finance"
                    ]
                }
            }
        },
        "ports.UpdateContactRequest": {
            "type": "object",
            "required": [
                "name",
                "email",
                "phone",
                "role",
                "department"
            ],
            "properties": {
                "Id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "department": {
                    "type": "string",
                    "enum": [
                        "Engineering",
                        "Product",
                        "Design",
                        "Marketing",
                        "Sales",
                        "Operations",
                        "HR",
                        "Finance"
                    ]
                }
            }
        },
        "ports.Notice": {
            "type": "object",
            "properties": {
                "level": {
                    "type": "string",
                    "enum": [
                        "success",
                        "info",
                        "error"
                    ]
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "ports.TaskStats": {
            "type": "object",
            "properties": {
                "all": {
                    "type": "integer"
                },
                "active": {
                    "type": "integer"
                },
                "completed": {
                    "type": "integer"
                },
                "overdue": {
                    "type": "integer"
                }
            }
        },
        "ports.CategorySummary": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "ports.DiscountSummary": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "active": {
                    "type": "integer"
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ports.CategorySummary"
                    }
                }
            }
        },
        "ports.Identity": {
            "type": "object",
            "properties": {
                "userId": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type 'Bearer' followed by a space and JWT token",
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
	Schemes:          []string{"http"},
	Title:            "Taskflow API",
	Description:      "Tasks, team contacts and partner discounts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
