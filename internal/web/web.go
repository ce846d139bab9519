// Package web serves the browser client: a single page that uploads a file,
// requests its transcription and renders the result.
package web

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var assets embed.FS

var files = map[string]string{
	"/":       "static/index.html",
	"/app.js": "static/app.js",
}

var contentTypes = map[string]string{
	"/":       "text/html; charset=utf-8",
	"/app.js": "application/javascript; charset=utf-8",
}

// Register mounts the client page and its script on r.
func Register(r gin.IRoutes) {
	for route, name := range files {
		r.GET(route, serve(name, contentTypes[route]))
	}
}

func serve(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := assets.ReadFile(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, contentType, data)
	}
}
