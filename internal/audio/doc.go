// Package audio fetches the audio files referenced by vocabulary tables
// into a media directory. Remote references are downloaded over HTTP,
// relative ones are resolved against a base URL or read from disk.
package audio
