package views

import (
	"embed"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps every rendered view
const Layout = "layouts/main"

//go:embed *.html layouts/*.html
var files embed.FS

// Engine returns the template engine. An empty dir serves the embedded
// templates; otherwise templates are read from dir and reloaded per request.
func Engine(dir string) *html.Engine {
	var engine *html.Engine
	if dir != "" {
		engine = html.New(dir, ".html")
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(http.FS(files), ".html")
	}

	engine.AddFunc("upper", strings.ToUpper)
	return engine
}
