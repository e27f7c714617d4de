// Package httperrors serves the worker's own predefined error documents.
package httperrors

import (
	"fmt"
	"net/http"

	"github.com/UtsavBalar1231/website/internal/logging"
)

type content struct {
	status       int
	title        string
	statusString string
	header       string
	subHeader    string
}

var (
	content404 = content{
		http.StatusNotFound,
		"The page you're looking for could not be found (404)",
		"404",
		"The page you're looking for could not be found.",
		`<p>Make sure the address is correct and that the page hasn't moved.</p>`,
	}
	content500 = content{
		http.StatusInternalServerError,
		"Something went wrong (500)",
		"500",
		"Whoops, something went wrong on our end.",
		`<p>Try refreshing the page, or going back and attempting the action again.</p>`,
	}
	content502 = content{
		http.StatusBadGateway,
		"The site is unreachable (502)",
		"502",
		"The site could not be reached.",
		`<p>The resource is not cached and the origin did not respond. Try again in a moment.</p>`,
	}
)

const predefinedErrorPage = `<!DOCTYPE html>
<html>
<head>
  <meta content="width=device-width, initial-scale=1" name="viewport">
  <title>%v</title>
  <style>
    body {
      color: #c5c8c6;
      background: #1d1f21;
      text-align: center;
      font-family: monospace;
      margin: auto;
      font-size: 14px;
    }

    h1 {
      font-size: 48px;
      line-height: 100px;
      font-weight: 400;
      color: #cc6666;
    }

    h2 {
      font-size: 22px;
      color: #c5c8c6;
      line-height: 1.5em;
    }

    p {
      max-width: 600px;
      margin: 18px auto;
    }

    a {
      color: #b294bb;
    }
  </style>
</head>
<body>
  <h1>%v</h1>
  <h2>%v</h2>
  %v
  <a href="/">Back to the home page</a>
</body>
</html>
`

func generateErrorHTML(c content) string {
	return fmt.Sprintf(predefinedErrorPage, c.title, c.statusString, c.header, c.subHeader)
}

func serveErrorPage(w http.ResponseWriter, c content) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(c.status)
	fmt.Fprintln(w, generateErrorHTML(c))
}

// Serve404 returns a 404 error response / HTML page to the http.ResponseWriter
func Serve404(w http.ResponseWriter) {
	serveErrorPage(w, content404)
}

// Serve500 returns a 500 error response / HTML page to the http.ResponseWriter
func Serve500(w http.ResponseWriter) {
	serveErrorPage(w, content500)
}

// Serve502 returns a 502 error response / HTML page to the http.ResponseWriter
func Serve502(w http.ResponseWriter) {
	serveErrorPage(w, content502)
}

// Serve502WithRequest logs the reason a request could not be satisfied before
// serving the 502 page.
func Serve502WithRequest(w http.ResponseWriter, r *http.Request, reason string, err error) {
	logging.LogRequest(r).WithError(err).Error(reason)
	serveErrorPage(w, content502)
}
