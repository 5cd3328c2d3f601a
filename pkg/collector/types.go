// Package collector gathers external context for a session: link content
// fetched from URLs in the issue description and images downloaded from
// attachments. Per-resource failures never abort a batch.
package collector

// FetchedContent is the per-URL outcome of a link fetch. Error is set when
// the URL could not be used; later stages skip errored entries but report
// them in the assumptions note.
type FetchedContent struct {
	URL       string
	Content   string
	Truncated bool
	Error     string
}

// ProcessedImage is one downloaded attachment image, base64 encoded.
// Oversized or unfetchable images are skipped silently and never appear here.
type ProcessedImage struct {
	URL      string
	Title    string
	MIMEType string
	Data     string // base64
	Size     int    // raw byte size before encoding
}
