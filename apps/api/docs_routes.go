package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// docSpecs maps public documentation names to their contract files.
var docSpecs = map[string]string{
	"auth": "contracts/auth.yaml",
}

const swaggerUITemplate = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>OdontoX API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
    <style>body{margin:0} #swagger-ui{max-width:1400px;margin:0 auto}</style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-standalone-preset.js"></script>
    <script>
      const specs = [/*__SPECS__*/];
      window.ui = SwaggerUIBundle({
        urls: specs,
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        layout: 'StandaloneLayout'
      });
    </script>
  </body>
</html>`

func registerDocsRoutes(router chi.Router, logger *zap.Logger) {
	router.Get("/docs", docsUIHandler())
	router.Get("/openapi/{name}.json", openapiJSONHandler(logger))
}

func docsUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		ui := strings.Replace(swaggerUITemplate, "/*__SPECS__*/", buildDocSpecsList(), 1)
		_, _ = w.Write([]byte(ui))
	}
}

func openapiJSONHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		path, ok := docSpecs[name]
		if !ok {
			http.NotFound(w, r)
			return
		}

		spec := mustLoadSpec(logger, path)
		b, err := spec.MarshalJSON()
		if err != nil {
			logger.Error("marshal openapi json", zap.String("name", name), zap.Error(err))
			http.Error(w, "failed to marshal OpenAPI", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func buildDocSpecsList() string {
	names := make([]string, 0, len(docSpecs))
	for name := range docSpecs {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for i, name := range names {
		if i > 0 {
			builder.WriteString(",\n")
		}
		builder.WriteString(fmt.Sprintf("        { url: '/openapi/%s.json', name: '%s' }", name, name))
	}
	return builder.String()
}
