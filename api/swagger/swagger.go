package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIGHA API",
        "description": "Sistema de Gestión de Horarios y Asignaciones académicas",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, refresh y sesión"},
        {"name": "Gestiones", "description": "Periodos académicos"},
        {"name": "Docentes", "description": "Docentes y carga horaria"},
        {"name": "Asignaciones", "description": "Asignación docente ↔ materia-grupo"},
        {"name": "Disponibilidad", "description": "Disponibilidad de aulas por día y bloque"},
        {"name": "Horarios", "description": "Horarios de clase"},
        {"name": "Asistencias", "description": "Registro de asistencia y justificaciones"},
        {"name": "Reportes", "description": "Exportes asíncronos de asistencia"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Autenticación por email y contraseña",
                "responses": {
                    "200": {"description": "Tokens emitidos"},
                    "401": {"description": "Credenciales inválidas"}
                }
            }
        },
        "/gestiones/activa": {
            "get": {
                "tags": ["Gestiones"],
                "summary": "Gestión académica activa",
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Sin gestión activa"}
                }
            }
        },
        "/docentes/{cod}/carga": {
            "get": {
                "tags": ["Docentes"],
                "summary": "Carga horaria del docente en la gestión activa",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Docente no encontrado"}
                }
            }
        },
        "/asignaciones": {
            "post": {
                "tags": ["Asignaciones"],
                "summary": "Asignar docente a una materia-grupo",
                "responses": {
                    "201": {"description": "Creada"},
                    "422": {"description": "Regla de negocio incumplida"}
                }
            }
        },
        "/disponibilidad": {
            "get": {
                "tags": ["Disponibilidad"],
                "summary": "Disponibilidad de aulas para un día y bloque",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Parámetros inválidos"}
                }
            }
        },
        "/asistencias": {
            "post": {
                "tags": ["Asistencias"],
                "summary": "Registrar asistencia de un horario",
                "responses": {
                    "201": {"description": "Creada"},
                    "409": {"description": "Ya registrada para la fecha"}
                }
            }
        },
        "/reportes": {
            "post": {
                "tags": ["Reportes"],
                "summary": "Encolar un export CSV/PDF de asistencia",
                "responses": {
                    "201": {"description": "Job encolado"}
                }
            }
        },
        "/reportes/descargas/{token}": {
            "get": {
                "tags": ["Reportes"],
                "summary": "Descargar un reporte mediante URL firmada",
                "responses": {
                    "200": {"description": "Archivo"},
                    "403": {"description": "Token inválido o expirado"}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"type": "object"},
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
