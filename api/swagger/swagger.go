package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gestão Escolar API",
        "description": "Classes, students, enrollment and exports",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Alunos", "description": "Student records"},
        {"name": "Turmas", "description": "Classes and occupancy"},
        {"name": "Matriculas", "description": "Enrollment with capacity enforcement"},
        {"name": "Export", "description": "CSV, JSON and PDF downloads"},
        {"name": "Authentication", "description": "Administrator login"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}}}
        },
        "/ready": {
            "get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "Ready"}, "503": {"description": "Database unreachable"}}}
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Obtain an access token",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "username", "in": "formData", "required": true, "type": "string"},
                    {"name": "password", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Token", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/alunos": {
            "get": {
                "tags": ["Alunos"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "turma_id", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive"]},
                    {"name": "page", "in": "query", "type": "integer", "default": 1},
                    {"name": "per_page", "in": "query", "type": "integer", "default": 20, "maximum": 1000}
                ],
                "responses": {
                    "200": {"description": "Page of students", "schema": {"$ref": "#/definitions/StudentListResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Alunos"],
                "summary": "Create student",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Validation, duplicate e-mail or full class", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/alunos/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
            "get": {
                "tags": ["Alunos"],
                "summary": "Get student",
                "responses": {
                    "200": {"description": "Student", "schema": {"$ref": "#/definitions/Student"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Alunos"],
                "summary": "Update student",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Alunos"],
                "summary": "Delete student",
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/turmas": {
            "get": {
                "tags": ["Turmas"],
                "summary": "List classes with occupancy",
                "responses": {"200": {"description": "Classes", "schema": {"type": "array", "items": {"$ref": "#/definitions/ClassDetail"}}}}
            },
            "post": {
                "tags": ["Turmas"],
                "summary": "Create class",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Class"}},
                    "400": {"description": "Validation failure or duplicate name", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/turmas/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
            "put": {
                "tags": ["Turmas"],
                "summary": "Update class",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassRequest"}}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Class"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Turmas"],
                "summary": "Delete class without students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "400": {"description": "Class still has students", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/matriculas": {
            "post": {
                "tags": ["Matriculas"],
                "summary": "Enroll a student in a class",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}],
                "responses": {
                    "200": {"description": "Enrolled student", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Class full", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Student or class not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/export/alunos": {
            "get": {
                "tags": ["Export"],
                "summary": "Export students",
                "produces": ["text/csv", "application/json", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "json", "pdf"], "default": "csv"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "turma_id", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Attachment"}, "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}}
            }
        },
        "/export/matriculas": {
            "get": {
                "tags": ["Export"],
                "summary": "Export enrolled students",
                "produces": ["text/csv", "application/json", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "json", "pdf"], "default": "csv"},
                    {"name": "turma_id", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "Attachment"}, "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}}
            }
        }
    },
    "definitions": {
        "ErrorBody": {"type": "object", "properties": {"detail": {"type": "string"}}},
        "HealthResponse": {"type": "object", "properties": {"status": {"type": "string"}}},
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string", "example": "bearer"},
                "expires_in": {"type": "integer"}
            }
        },
        "Class": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "nome": {"type": "string"},
                "capacidade": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ClassDetail": {
            "allOf": [
                {"$ref": "#/definitions/Class"},
                {"type": "object", "properties": {"ocupacao": {"type": "integer"}}}
            ]
        },
        "ClassRequest": {
            "type": "object",
            "required": ["nome", "capacidade"],
            "properties": {
                "nome": {"type": "string", "maxLength": 120},
                "capacidade": {"type": "integer", "minimum": 1}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "nome": {"type": "string"},
                "data_nascimento": {"type": "string", "format": "date"},
                "email": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "inactive"]},
                "turma_id": {"type": "integer"},
                "turma_nome": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["nome", "data_nascimento"],
            "properties": {
                "nome": {"type": "string", "minLength": 3, "maxLength": 80},
                "data_nascimento": {"type": "string", "format": "date"},
                "email": {"type": "string", "format": "email"},
                "status": {"type": "string", "enum": ["active", "inactive", "ativo", "inativo"]},
                "turma_id": {"type": "integer"}
            }
        },
        "StudentListResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/Student"}}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["aluno_id", "turma_id"],
            "properties": {
                "aluno_id": {"type": "integer"},
                "turma_id": {"type": "integer"}
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
