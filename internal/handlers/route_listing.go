package handlers

import (
	"html/template"
	"net/http"
	"sort"
	"strings"

	"osvillage/internal/observability"
	"osvillage/internal/version"

	"github.com/gin-gonic/gin"
)

// RouteInfo represents information about a single route
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// RouteListingHandler serves /docs: every registered route, as JSON or as a small HTML page
type RouteListingHandler struct {
	serviceName string
	routes      []RouteInfo
}

var routeListingPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Service}} routes</title></head>
<body>
<h1>{{.Service}} {{.Version}}</h1>
<table>
<tr><th>Method</th><th>Path</th></tr>
{{range .Routes}}<tr><td>{{.Method}}</td><td><code>{{.Path}}</code></td></tr>
{{end}}</table>
</body>
</html>
`))

// NewRouteListingHandler creates a new route listing handler
func NewRouteListingHandler(serviceName string) *RouteListingHandler {
	return &RouteListingHandler{
		serviceName: serviceName,
		routes:      []RouteInfo{},
	}
}

// CollectRoutes snapshots the engine's routes, sorted by path then method
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	h.routes = []RouteInfo{}
	for _, route := range engine.Routes() {
		if strings.HasPrefix(route.Path, "/debug/") {
			continue
		}
		h.routes = append(h.routes, RouteInfo{Method: route.Method, Path: route.Path})
	}

	sort.Slice(h.routes, func(i, j int) bool {
		if h.routes[i].Path == h.routes[j].Path {
			return h.routes[i].Method < h.routes[j].Method
		}
		return h.routes[i].Path < h.routes[j].Path
	})
}

// GetRouteListing answers with HTML when the client asks for it and JSON otherwise
func (h *RouteListingHandler) GetRouteListing(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing")
	defer observability.FinishSpan(span, nil)

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		var buf strings.Builder
		err := routeListingPage.Execute(&buf, map[string]interface{}{
			"Service": h.serviceName,
			"Version": version.Version,
			"Routes":  h.routes,
		})
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(buf.String()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": h.serviceName,
		"version": version.Version,
		"routes":  h.routes,
	})
}
