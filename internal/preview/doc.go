// Package preview serves the generated site locally and optionally
// watches the source tree, rebuilding when files change. It is a
// development aid: the generated output is plain static files and any
// web server can host them in production.
package preview
