package handlers

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// API Docs
// ============================================================

const openapiPath = "docs/openapi.yaml"

// SwaggerSpec serves the OpenAPI document.
func SwaggerSpec(c fiber.Ctx) error {
	data, err := os.ReadFile(openapiPath)
	if err != nil {
		log.Printf("[DOCS] Read spec error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "spec not found"})
	}
	c.Type("yaml")
	return c.Send(data)
}

const swaggerPage = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Floor Plan API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = function () {
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  };
</script>
</body>
</html>`

// SwaggerUI serves the Swagger UI page, the spec itself comes from
// /docs/openapi.yaml.
func SwaggerUI(c fiber.Ctx) error {
	c.Type("html")
	return c.SendString(swaggerPage)
}
