package openapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Property describes one member of the patient record schema.
type Property struct {
	Name        string
	Type        string // "integer" or "number"
	Description string
	Enum        []int
}

// Generator builds the OpenAPI 3.0 document for the prediction API.
type Generator struct {
	version string
	baseURL string
	record  []Property
}

// NewGenerator creates a new OpenAPI spec generator. record lists the
// patient record members in wire order.
func NewGenerator(version, baseURL string, record []Property) *Generator {
	return &Generator{version: version, baseURL: baseURL, record: record}
}

// GenerateSpec produces the OpenAPI 3.0 spec as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := map[string]interface{}{
		"/api/predict": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Classify cardiovascular risk",
				"operationId": "predict",
				"tags":        []string{"Prediction"},
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": ref("PatientRecord"),
						},
					},
				},
				"responses": map[string]interface{}{
					"200": response("Risk classification", "PredictResponse"),
					"413": response("Request body too large", "ErrorResponse"),
					"500": response("Prediction failed", "ErrorResponse"),
				},
			},
		},
		"/health": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Liveness check",
				"operationId": "health",
				"tags":        []string{"Health"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Server is up"},
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Cardiovascular Risk Prediction API",
			"version":     g.version,
			"description": "Relays patient records to the inference service",
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": g.schemas(),
		},
	}
}

func (g *Generator) schemas() map[string]interface{} {
	props := make(map[string]interface{}, len(g.record))
	required := make([]string, 0, len(g.record))
	for _, p := range g.record {
		s := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			s["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			s["enum"] = p.Enum
		}
		props[p.Name] = s
		required = append(required, p.Name)
	}

	return map[string]interface{}{
		"PatientRecord": map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
		"PredictResponse": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"prediction": map[string]interface{}{
					"description": "Value returned by the inference service; 1 is high risk",
				},
			},
			"required": []string{"prediction"},
		},
		"ErrorResponse": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"error": map[string]string{"type": "string"},
			},
			"required": []string{"error"},
		},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

func response(description, schema string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": ref(schema),
			},
		},
	}
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Cardiovascular Risk Prediction API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/openapi.json",
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// RegisterRoutes registers the OpenAPI endpoints.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
