// Package cmd provides the command-line interface for fotosite.
//
// Configuration is layered: command-line flags take precedence over
// FOTOSITE_* environment variables, which take precedence over the
// fotosite.yml config file in the working directory.
//
//	fotosite generate            Scan the source tree and encode variants
//	fotosite serve               Preview the site locally, rebuilding on change
//	fotosite clean               Remove the cache and generated output
//	fotosite version             Print version information
package cmd
