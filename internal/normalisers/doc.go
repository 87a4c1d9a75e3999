// Package normalisers turns uploaded files into the plain text that is
// chunked and embedded. Each sub-package handles one family of formats;
// the Registry picks one by file extension and falls back to plain text.
package normalisers
