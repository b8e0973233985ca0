package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/vocabtable/internal"
	"codeberg.org/snonux/vocabtable/internal/flashcard"
)

// fieldSeparator joins note fields in the notes table
const fieldSeparator = "\x1f"

// PackageBuilder creates Anki package files (.apkg) from flashcards and the
// audio files in a media directory
type PackageBuilder struct {
	deckName   string
	deckID     int64
	modelID    int64
	mediaDir   string
	cards      []flashcard.Flashcard
	mediaFiles map[string]int // media filename -> numbered zip entry
}

// NewPackageBuilder creates a builder for one deck
func NewPackageBuilder(deckName, mediaDir string) *PackageBuilder {
	now := time.Now().UnixMilli()
	return &PackageBuilder{
		deckName:   deckName,
		deckID:     now,
		modelID:    now + 1,
		mediaDir:   mediaDir,
		mediaFiles: make(map[string]int),
	}
}

// AddCards appends cards to the deck
func (b *PackageBuilder) AddCards(cards ...flashcard.Flashcard) {
	b.cards = append(b.cards, cards...)
}

// CardCount returns the number of notes in the deck
func (b *PackageBuilder) CardCount() int {
	return len(b.cards)
}

// Build writes the package to outputPath
func (b *PackageBuilder) Build(outputPath string) error {
	tempDir, err := os.MkdirTemp("", "vocabtable_apkg_*")
	if err != nil {
		return &PersistenceError{Path: outputPath, Err: fmt.Errorf("failed to create temp directory: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	steps := []struct {
		name string
		run  func() error
	}{
		{"copy media files", func() error { return b.copyMediaFiles(tempDir) }},
		{"create media mapping", func() error { return b.writeMediaMapping(tempDir) }},
		{"create database", func() error { return b.createDatabase(filepath.Join(tempDir, "collection.anki2")) }},
		{"create zip package", func() error { return zipDirectory(tempDir, outputPath) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			os.Remove(outputPath)
			return &PersistenceError{Path: outputPath, Err: fmt.Errorf("failed to %s: %w", step.name, err)}
		}
	}

	return nil
}

// copyMediaFiles copies each referenced audio file once, numbering them in
// first-use order. Cards whose audio is missing keep no sound.
func (b *PackageBuilder) copyMediaFiles(tempDir string) error {
	for _, card := range b.cards {
		if card.AudioFile == "" {
			continue
		}
		if _, seen := b.mediaFiles[card.AudioFile]; seen {
			continue
		}

		src := filepath.Join(b.mediaDir, card.AudioFile)
		if !fileExists(src) {
			continue
		}

		number := len(b.mediaFiles)
		if err := copyFile(src, filepath.Join(tempDir, strconv.Itoa(number))); err != nil {
			return fmt.Errorf("failed to copy audio file %s: %w", src, err)
		}
		b.mediaFiles[card.AudioFile] = number
	}
	return nil
}

func (b *PackageBuilder) writeMediaMapping(tempDir string) error {
	mapping := make(map[string]string, len(b.mediaFiles))
	for filename, number := range b.mediaFiles {
		mapping[strconv.Itoa(number)] = filename
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

func (b *PackageBuilder) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := b.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	if err := b.insertNotes(db); err != nil {
		return fmt.Errorf("failed to insert notes: %w", err)
	}
	return nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE col (
			id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
			scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
			usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
			models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
			tags text NOT NULL
		)`,
		`CREATE TABLE notes (
			id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
			mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
			flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
			flags integer NOT NULL, data text NOT NULL
		)`,
		`CREATE TABLE cards (
			id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
			ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
			type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
			ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
			lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
			odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
		)`,
		`CREATE TABLE revlog (
			id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
			ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
			factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
		)`,
		`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
		`CREATE INDEX ix_notes_usn ON notes (usn)`,
		`CREATE INDEX ix_cards_usn ON cards (usn)`,
		`CREATE INDEX ix_cards_nid ON cards (nid)`,
		`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func (b *PackageBuilder) insertCollection(db *sql.DB) error {
	now := time.Now().Unix()

	decks := map[string]interface{}{
		"1":                             deckConfig(1, "Default", now),
		strconv.FormatInt(b.deckID, 10): deckConfig(b.deckID, b.deckName, now),
	}
	models := map[string]interface{}{
		strconv.FormatInt(b.modelID, 10): b.noteType(now),
	}
	conf := map[string]interface{}{
		"nextPos":     1,
		"activeDecks": []int64{1},
		"curDeck":     1,
		"schedVer":    1,
		"curModel":    strconv.FormatInt(b.modelID, 10),
		"sortType":    "noteFld",
	}
	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id":       1,
			"name":     "Default",
			"new":      map[string]interface{}{"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500, "perDay": 20, "order": 1},
			"lapse":    map[string]interface{}{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
			"rev":      map[string]interface{}{"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500, "ivlFct": 1},
			"maxTaken": 60,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}

	encoded := make([]string, 0, 4)
	for _, v := range []interface{}{conf, models, decks, dconf} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, string(data))
	}

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, now, now*1000, now*1000, 11, 0, 0, 0,
		encoded[0], encoded[1], encoded[2], encoded[3], "{}",
	)
	return err
}

func deckConfig(id int64, name string, now int64) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"name":      name,
		"mod":       now,
		"desc":      "",
		"dyn":       0,
		"conf":      1,
		"usn":       0,
		"newToday":  []int{0, 0},
		"revToday":  []int{0, 0},
		"lrnToday":  []int{0, 0},
		"timeToday": []int{0, 0},
	}
}

// noteType describes the Front/Back/Audio note with a single card template
func (b *PackageBuilder) noteType(now int64) map[string]interface{} {
	fields := make([]map[string]interface{}, 0, 3)
	for i, name := range []string{"Front", "Back", "Audio"} {
		fields = append(fields, map[string]interface{}{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		})
	}

	return map[string]interface{}{
		"id":    b.modelID,
		"name":  "Vocabulary Table (Front/Back)",
		"type":  0,
		"mod":   now,
		"usn":   -1,
		"sortf": 0,
		"did":   b.deckID,
		"req":   [][]interface{}{{0, "all", []int{0}}},
		"flds":  fields,
		"tmpls": []map[string]interface{}{
			{
				"name": "Card 1",
				"ord":  0,
				"qfmt": `<div class="front">{{Front}}</div>`,
				"afmt": "{{FrontSide}}\n\n<hr id=\"answer\">\n\n<div class=\"back\">{{Back}}</div>\n{{Audio}}",
				"did":  nil,
			},
		},
		"css": `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front {
  font-size: 28px;
  font-weight: bold;
}`,
	}
}

func (b *PackageBuilder) insertNotes(db *sql.DB) error {
	now := time.Now()

	for i, card := range b.cards {
		noteID := now.UnixMilli() + int64(i*2)
		cardID := noteID + 1

		audioField := ""
		if _, ok := b.mediaFiles[card.AudioFile]; ok {
			audioField = card.Sound
		}
		fields := strings.Join([]string{card.Front, card.Back, audioField}, fieldSeparator)

		_, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,
			internal.GenerateCardID(card.Front+fieldSeparator+card.Back), // guid
			b.modelID,
			now.Unix(),
			-1,
			"",
			fields,
			card.Front, // sort field
			0,
			0,
			"",
		)
		if err != nil {
			return fmt.Errorf("failed to insert note %d: %w", i+1, err)
		}

		// New card at position i+1, no review history
		_, err = db.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cardID, noteID, b.deckID, 0, now.Unix(), -1,
			0, 0, i+1,
			0, 0, 0, 0, 0, 0, 0, 0, "",
		)
		if err != nil {
			return fmt.Errorf("failed to insert card %d: %w", i+1, err)
		}
	}

	return nil
}

// zipDirectory writes every regular file in dir into a zip at outputPath
func zipDirectory(dir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	archive := zip.NewWriter(zipFile)

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err = addZipEntry(archive, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
				break
			}
		}
	}

	if closeErr := archive.Close(); err == nil {
		err = closeErr
	}
	if closeErr := zipFile.Close(); err == nil {
		err = closeErr
	}
	return err
}

func addZipEntry(archive *zip.Writer, path, name string) error {
	writer, err := archive.Create(name)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(writer, file)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
