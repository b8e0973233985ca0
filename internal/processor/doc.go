// Package processor orchestrates the conversion of a directory of HTML
// vocabulary tables. For every input file it parses the markup, decodes the
// rows into expressions, optionally fills missing transcriptions, projects
// flashcards, downloads the audio and writes the export files. A failing
// file is reported and the run moves on to the next one.
package processor
