package webapi

import "fmt"

// Minimal static pages for the install flow. Everything else the agent does
// happens inside the tracker UI.

const landingPage = `<!DOCTYPE html>
<html>
<head><title>copysmith</title></head>
<body style="font-family: sans-serif; max-width: 40em; margin: 4em auto;">
<h1>copysmith</h1>
<p>An agent that drafts marketing and documentation content from your issues.</p>
<p><a href="/oauth/install">Install into your workspace</a></p>
</body>
</html>`

const successPage = `<!DOCTYPE html>
<html>
<head><title>copysmith installed</title></head>
<body style="font-family: sans-serif; max-width: 40em; margin: 4em auto;">
<h1>All set</h1>
<p>copysmith is installed. Assign it to an issue that needs copy, content, or documentation.</p>
</body>
</html>`

func errorPage(message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>copysmith</title></head>
<body style="font-family: sans-serif; max-width: 40em; margin: 4em auto;">
<h1>Something went wrong</h1>
<p>%s</p>
</body>
</html>`, message)
}
