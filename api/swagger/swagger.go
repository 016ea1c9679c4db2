package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniAdmin API",
        "description": "Administrative backend for academic, security and help-desk domains",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Users", "description": "Account and role administration"},
        {"name": "Specialties", "description": "Specialty catalog"},
        {"name": "Careers", "description": "Career catalog"},
        {"name": "Cycles", "description": "Cycle catalog"},
        {"name": "Teachers", "description": "Teaching staff registry"},
        {"name": "Students", "description": "Student registry"},
        {"name": "Subjects", "description": "Subject catalog with seat quotas"},
        {"name": "Periods", "description": "Academic period windows"},
        {"name": "Enrollments", "description": "Seat allocation coordinator"},
        {"name": "Linkages", "description": "Teacher/student subject links"},
        {"name": "Reports", "description": "Aggregate read models and exports"},
        {"name": "Audit", "description": "Audit trail and system events"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
