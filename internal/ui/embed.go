// Package ui embeds the self-contained dashboard document.
package ui

import _ "embed"

//go:embed dashboard.html
var dashboardHTML []byte

// Dashboard returns the dashboard document (HTML plus inline poll
// controller). It is a single static asset; all dynamic content arrives
// via the JSON API it polls.
func Dashboard() []byte {
	return dashboardHTML
}
