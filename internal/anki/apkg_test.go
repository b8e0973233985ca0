package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/vocabtable/internal/flashcard"
)

func testCards() []flashcard.Flashcard {
	return []flashcard.Flashcard{
		{Mode: flashcard.ModeLineBreak, Front: "cat", Back: "el gato<br>ˈɡato<br>", Sound: "[sound:x.mp3]", AudioFile: "x.mp3"},
		{Mode: flashcard.ModeLineBreak, Front: "house", Back: "la casa<br>ˈkasa<br>", Sound: "[sound:casa.mp3]", AudioFile: "casa.mp3"},
		{Mode: flashcard.ModeLineBreak, Front: "cats", Back: "los gatos<br>", Sound: "[sound:x.mp3]", AudioFile: "x.mp3"},
	}
}

func TestNewPackageBuilder(t *testing.T) {
	b := NewPackageBuilder("Spanish", "media")

	if b.deckName != "Spanish" {
		t.Errorf("Expected deck name 'Spanish', got '%s'", b.deckName)
	}
	if b.modelID != b.deckID+1 {
		t.Errorf("Expected model ID to follow deck ID")
	}
	if b.CardCount() != 0 {
		t.Errorf("Expected no cards, got %d", b.CardCount())
	}

	b.AddCards(testCards()...)
	if b.CardCount() != 3 {
		t.Errorf("Expected 3 cards, got %d", b.CardCount())
	}
}

func TestBuild(t *testing.T) {
	tempDir := t.TempDir()
	mediaDir := filepath.Join(tempDir, "media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatal(err)
	}
	// casa.mp3 is intentionally absent
	if err := os.WriteFile(filepath.Join(mediaDir, "x.mp3"), []byte("fake audio"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewPackageBuilder("Spanish", mediaDir)
	b.AddCards(testCards()...)

	outputPath := filepath.Join(tempDir, "unit1.apkg")
	if err := b.Build(outputPath); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG as zip: %v", err)
	}
	defer reader.Close()

	names := make(map[string]*zip.File)
	for _, file := range reader.File {
		names[file.Name] = file
	}
	for _, required := range []string{"collection.anki2", "media", "0"} {
		if _, ok := names[required]; !ok {
			t.Errorf("Required file '%s' not found in APKG", required)
		}
	}
	if _, ok := names["1"]; ok {
		t.Error("Audio shared by two cards should be packaged once")
	}

	rc, err := names["media"].Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		t.Fatalf("Invalid media mapping: %v", err)
	}
	if mapping["0"] != "x.mp3" || len(mapping) != 1 {
		t.Errorf("Media mapping = %v, want {0: x.mp3}", mapping)
	}
}

func TestCreateDatabase(t *testing.T) {
	tempDir := t.TempDir()
	mediaDir := filepath.Join(tempDir, "media")
	os.MkdirAll(mediaDir, 0755)
	os.WriteFile(filepath.Join(mediaDir, "x.mp3"), []byte("fake audio"), 0644)

	b := NewPackageBuilder("Spanish", mediaDir)
	b.AddCards(testCards()[:2]...)
	if err := b.copyMediaFiles(tempDir); err != nil {
		t.Fatalf("copyMediaFiles() error = %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.anki2")
	if err := b.createDatabase(dbPath); err != nil {
		t.Fatalf("createDatabase() error = %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var noteCount, cardCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&noteCount); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if noteCount != 2 || cardCount != 2 {
		t.Errorf("Expected 2 notes and 2 cards, got %d and %d", noteCount, cardCount)
	}

	rows, err := db.Query("SELECT flds, sfld FROM notes ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var flds, sfld string
		if err := rows.Scan(&flds, &sfld); err != nil {
			t.Fatal(err)
		}
		fields = append(fields, flds)
	}

	if len(fields) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(fields))
	}
	first := strings.Split(fields[0], fieldSeparator)
	if len(first) != 3 || first[0] != "cat" || first[2] != "[sound:x.mp3]" {
		t.Errorf("First note fields = %q", first)
	}
	second := strings.Split(fields[1], fieldSeparator)
	if len(second) != 3 || second[2] != "" {
		t.Errorf("Note without packaged audio should have an empty Audio field, got %q", second)
	}
}

func TestBuildPersistenceError(t *testing.T) {
	b := NewPackageBuilder("Spanish", t.TempDir())
	b.AddCards(testCards()...)

	outputPath := filepath.Join(t.TempDir(), "missing", "unit1.apkg")
	err := b.Build(outputPath)

	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
}
