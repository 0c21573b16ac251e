// Package source turns dump files into xmlload.RecordSource streams.
//
// XMLSource decodes one token at a time and yields a Record for every
// element named "row"; nothing else in the document is retained. Locator
// finds the file for a table inside the dump directory and transparently
// decompresses .gz, .bz2, .zst and .xz variants.
package source
