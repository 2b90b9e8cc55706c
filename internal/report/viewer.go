package report

import _ "embed"

// viewerHTML is a self-contained page that loads report.json from its
// own directory and renders the timeline client side.
//
//go:embed assets/viewer.html
var viewerHTML []byte
