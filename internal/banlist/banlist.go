package banlist

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/xuri/excelize/v2"
)

// Sets is one immutable snapshot of the three banned-term sets. Lookups
// always run against a complete snapshot; a reload swaps the whole thing.
type Sets struct {
	Words       map[string]struct{}
	AudioTitles map[string]struct{}
	FileStems   map[string]struct{}
}

// Counts reports set sizes after a load, for the /update_lists reply.
type Counts struct {
	Words       int
	AudioTitles int
	FileStems   int
}

// Paths locates the three spreadsheet sources.
type Paths struct {
	Words       string
	AudioTitles string
	FileStems   string
}

// Lists holds the banned-term sets behind an atomic pointer so concurrent
// evaluators never observe a partially reloaded set.
type Lists struct {
	paths   Paths
	current atomic.Pointer[Sets]
	logger  *slog.Logger
}

// New creates the lists and performs the initial load. A file that cannot
// be read yields an empty set for that list, never an error.
func New(paths Paths, logger *slog.Logger) *Lists {
	l := &Lists{paths: paths, logger: logger}
	l.Reload()
	return l
}

// Reload rebuilds all three sets from their spreadsheets and swaps them in
// atomically.
func (l *Lists) Reload() Counts {
	next := &Sets{
		Words:       l.loadSet(l.paths.Words),
		AudioTitles: l.loadSet(l.paths.AudioTitles),
		FileStems:   l.loadSet(l.paths.FileStems),
	}
	l.current.Store(next)

	counts := Counts{
		Words:       len(next.Words),
		AudioTitles: len(next.AudioTitles),
		FileStems:   len(next.FileStems),
	}
	l.logger.Info("banned lists loaded",
		"words", counts.Words,
		"audio_titles", counts.AudioTitles,
		"file_stems", counts.FileStems,
	)
	return counts
}

// Snapshot returns the current full snapshot.
func (l *Lists) Snapshot() *Sets {
	return l.current.Load()
}

// loadSet reads the first column of the first sheet, lowercased and
// trimmed, skipping blanks.
func (l *Lists) loadSet(path string) map[string]struct{} {
	set := make(map[string]struct{})

	terms, err := readFirstColumn(path)
	if err != nil {
		l.logger.Error("failed to load banned list", "path", path, "error", err)
		return set
	}
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		set[term] = struct{}{}
	}
	return set
}

func readFirstColumn(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var terms []string
	for _, row := range rows {
		if len(row) > 0 {
			terms = append(terms, row[0])
		}
	}
	return terms, nil
}

// MatchWord returns the first token present in the word-ban set.
func (s *Sets) MatchWord(tokens []string) (string, bool) {
	return match(s.Words, tokens)
}

// MatchAudioTitle returns the first token present in the audio-title set.
func (s *Sets) MatchAudioTitle(tokens []string) (string, bool) {
	return match(s.AudioTitles, tokens)
}

// MatchFileStem returns the first token present in the file-name set.
func (s *Sets) MatchFileStem(tokens []string) (string, bool) {
	return match(s.FileStems, tokens)
}

func match(set map[string]struct{}, tokens []string) (string, bool) {
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			return tok, true
		}
	}
	return "", false
}
