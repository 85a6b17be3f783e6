package interfaces

// HTMLSanitizer strips unsafe markup from message bodies before they cross
// the API boundary.
type HTMLSanitizer interface {
	Sanitize(html string) string
}
