// Package docs registers the CogniVerse OpenAPI document with swag.
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
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "name": "X-Session-Token",
            "in": "header"
        }
    },
    "paths": {
        "/api/v1/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["对话"],
                "summary": "模型列表",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/chat": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话"],
                "summary": "发送消息",
                "parameters": [{"description": "消息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/chat.ChatRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/documents/analyze": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话"],
                "summary": "文档分析",
                "parameters": [{"description": "问题", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/chat.AnalyzeDocumentsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/images/analyze": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["对话"],
                "summary": "图片分析",
                "parameters": [
                    {"type": "file", "description": "图片", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "describe|ocr|objects|custom", "name": "analysis", "in": "formData"},
                    {"type": "string", "description": "custom 分析的问题", "name": "question", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/conversations": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "获取对话列表",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "创建对话",
                "parameters": [{"description": "对话标题", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/conversation.CreateRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "清空全部对话",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/current": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "获取当前对话",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/search": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "搜索对话",
                "parameters": [{"type": "string", "description": "关键词", "name": "q", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/stats": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "对话统计",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/cleanup": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "清理旧对话",
                "parameters": [{"description": "天数", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/conversation.CleanupRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/{id}": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "获取对话详情",
                "parameters": [{"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "重命名对话",
                "parameters": [
                    {"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true},
                    {"description": "新标题", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/conversation.RenameRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "删除对话",
                "parameters": [{"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/conversations/{id}/select": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "切换当前对话",
                "parameters": [{"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/{id}/messages": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "对话消息",
                "parameters": [
                    {"type": "string", "description": "对话ID或current", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "只返回最近 N 条", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/{id}/export": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json", "text/csv", "text/plain"],
                "tags": ["对话管理"],
                "summary": "导出对话",
                "parameters": [
                    {"type": "string", "description": "对话ID或current", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "json", "description": "json|csv|txt", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/conversations/{id}/favorite": {
            "put": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "设置收藏",
                "parameters": [
                    {"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true},
                    {"description": "是否收藏", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/conversation.FavoriteRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/{id}/tags": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "添加标签",
                "parameters": [
                    {"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true},
                    {"description": "标签", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/conversation.TagRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/conversations/{id}/tags/{tag}": {
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["对话管理"],
                "summary": "移除标签",
                "parameters": [
                    {"type": "string", "description": "对话ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "标签", "name": "tag", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/files": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "已上传文件",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            },
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "上传文件",
                "parameters": [{"type": "file", "description": "上传的文件", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "清空已上传文件",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/files/formats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "支持的格式",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        },
        "/api/v1/preferences": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["会话"],
                "summary": "获取偏好",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            },
            "put": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["会话"],
                "summary": "修改偏好",
                "parameters": [{"description": "偏好", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.PreferencesRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/reset": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["会话"],
                "summary": "重置会话",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuccessResponse"}}}
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        },
        "http.SuccessResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "chat.ChatRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string"},
                "model": {"type": "string"}
            }
        },
        "chat.AnalyzeDocumentsRequest": {
            "type": "object",
            "required": ["question"],
            "properties": {
                "question": {"type": "string"},
                "model": {"type": "string"}
            }
        },
        "conversation.CreateRequest": {
            "type": "object",
            "properties": {"title": {"type": "string"}}
        },
        "conversation.RenameRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {"title": {"type": "string"}}
        },
        "conversation.FavoriteRequest": {
            "type": "object",
            "properties": {"favorite": {"type": "boolean"}}
        },
        "conversation.TagRequest": {
            "type": "object",
            "required": ["tag"],
            "properties": {"tag": {"type": "string"}}
        },
        "conversation.CleanupRequest": {
            "type": "object",
            "required": ["days"],
            "properties": {"days": {"type": "integer", "minimum": 1}}
        },
        "session.PreferencesRequest": {
            "type": "object",
            "properties": {
                "model": {"type": "string"},
                "temperature": {"type": "number", "minimum": 0, "maximum": 2},
                "max_tokens": {"type": "integer", "minimum": 1},
                "show_timestamps": {"type": "boolean"},
                "auto_save": {"type": "boolean"}
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
	Title:            "CogniVerse API",
	Description:      "Multi-conversation chat, file ingestion and image analysis backed by an LLM gateway.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
