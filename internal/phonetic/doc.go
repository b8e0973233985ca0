// Package phonetic fills in missing IPA transcriptions using OpenAI's GPT
// models. It is only consulted for expressions whose table row left the
// transcription cell empty.
package phonetic
