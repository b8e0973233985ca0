// Package anki writes flashcards in formats Anki can import: a
// semicolon-delimited text file with one card per line, and optionally an
// .apkg package bundling the cards with their audio.
package anki
