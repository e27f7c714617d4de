// Package offline synthesizes the terminal fallback document served when a
// navigation can be satisfied neither from the network nor from any cache
// store. It must never itself fail and depends on nothing but a fixed
// template.
package offline

import (
	"fmt"
	"net/http"
)

const offlinePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta content="width=device-width, initial-scale=1" name="viewport">
  <title>Offline</title>
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
      font-size: 40px;
      line-height: 80px;
      font-weight: 400;
      color: #81a2be;
    }

    p {
      max-width: 600px;
      margin: 18px auto;
      line-height: 1.5em;
    }

    a {
      color: #b294bb;
    }
  </style>
</head>
<body>
  <h1>You are offline</h1>
  <p>This page has not been cached yet and the network is unreachable.</p>
  <p>Pages you visited before are still available from the cache.</p>
  <a href="/">Back to the home page</a>
</body>
</html>
`

// Document returns the offline placeholder document.
func Document() string {
	return offlinePage
}

// Serve writes the offline document with a 200 status so the browser renders
// it as a normal page.
func Serve(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, offlinePage)
}
