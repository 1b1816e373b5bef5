// Package docs NewsHub Worker API
//
// NewsHub is a categorised news aggregation service that stores articles
// per category, enriches them with generated summaries on demand, and
// refreshes its data from upstream feeds on a schedule.
//
//	Schemes: http, https
//	Host: localhost:8080
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs

import "github.com/swaggo/swag"

// @title NewsHub Worker API
// @version 1.0
// @description Categorised news aggregation service with on-demand summaries
// @host localhost:8080
// @BasePath /

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "NewsHub Worker API",
        "description": "Categorised news aggregation service with on-demand summaries",
        "version": "1.0.0"
    },
    "host": "localhost:8080",
    "basePath": "/",
    "schemes": ["http", "https"],
    "produces": ["application/json"],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health Check",
                "description": "Reports service health and whether the scheduled poller is active",
                "operationId": "healthCheck",
                "responses": {
                    "200": {
                        "description": "Service is healthy"
                    }
                }
            }
        },
        "/categories": {
            "get": {
                "summary": "List Categories",
                "description": "Returns the fixed set of supported news categories",
                "operationId": "getCategories",
                "responses": {
                    "200": {
                        "description": "Category names and count"
                    }
                }
            }
        },
        "/{category}": {
            "get": {
                "summary": "Articles for a Category",
                "description": "Returns every retained article in the category, newest first",
                "operationId": "getCategoryArticles",
                "parameters": [
                    {
                        "name": "category",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": ["business", "entertainment", "health", "science", "sports", "technology"]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Article list"
                    },
                    "500": {
                        "description": "Storage failure"
                    }
                }
            }
        },
        "/all": {
            "get": {
                "summary": "Articles Across All Categories",
                "description": "Returns articles from every category, newest first, capped",
                "operationId": "getAllArticles",
                "responses": {
                    "200": {
                        "description": "Article list with category tags"
                    },
                    "500": {
                        "description": "Storage failure"
                    }
                }
            }
        },
        "/summary": {
            "get": {
                "summary": "Article Summary",
                "description": "Returns the article with its summary, generating one on first request",
                "operationId": "getSummary",
                "parameters": [
                    {"name": "category", "in": "query", "required": true, "type": "string"},
                    {"name": "id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {
                        "description": "Article with summary and content"
                    },
                    "400": {
                        "description": "Missing or invalid parameters"
                    },
                    "404": {
                        "description": "Article not found"
                    },
                    "500": {
                        "description": "Extraction or storage failure"
                    }
                }
            }
        },
        "/likecnt": {
            "get": {
                "summary": "Toggle Like",
                "description": "Adds or removes a like on an article for the given username",
                "operationId": "toggleLike",
                "parameters": [
                    {"name": "username", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "required": true, "type": "string"},
                    {"name": "id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {
                        "description": "Updated like count and liker list"
                    },
                    "400": {
                        "description": "Missing or invalid parameters"
                    },
                    "404": {
                        "description": "Article not found"
                    },
                    "500": {
                        "description": "Storage failure"
                    }
                }
            }
        },
        "/lastupdate": {
            "get": {
                "summary": "Last Refresh Timestamp",
                "description": "Returns the timestamp of the most recent refresh run",
                "operationId": "getLastUpdate",
                "responses": {
                    "200": {
                        "description": "Last refresh timestamp"
                    },
                    "404": {
                        "description": "No refresh has completed yet"
                    }
                }
            }
        },
        "/refresh": {
            "get": {
                "summary": "Trigger Refresh",
                "description": "Fetches fresh articles for every category and prunes stale rows",
                "operationId": "refresh",
                "responses": {
                    "200": {
                        "description": "Refresh completed without errors"
                    },
                    "409": {
                        "description": "A refresh is already in progress"
                    },
                    "500": {
                        "description": "Refresh completed with errors"
                    }
                }
            }
        }
    }
}`
