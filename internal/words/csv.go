package words

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cleanvid/internal/services"
)

var csvHeader = []string{"start", "end", "word", "confidence"}

// Save writes words to a CSV file with a header row. The write goes
// through a temp file and rename so readers never see a partial file.
func Save(path string, list []Word) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "", "words.save", "create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".words-*.csv")
	if err != nil {
		return services.Wrap(services.ErrTransient, "", "words.save", "create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(csvHeader); err != nil {
		tmp.Close()
		return services.Wrap(services.ErrTransient, "", "words.save", "write header", err)
	}
	for _, word := range list {
		record := []string{
			strconv.FormatFloat(word.Start, 'f', -1, 64),
			strconv.FormatFloat(word.End, 'f', -1, 64),
			word.Text,
			strconv.FormatFloat(word.Confidence, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return services.Wrap(services.ErrTransient, "", "words.save", "write record", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return services.Wrap(services.ErrTransient, "", "words.save", "flush", err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrTransient, "", "words.save", "close temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return services.Wrap(services.ErrTransient, "", "words.save", "rename into place", err)
	}
	return nil
}

// Load reads words from a CSV file written by Save.
func Load(path string) ([]Word, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "", "words.load", "open file", err)
		}
		return nil, services.Wrap(services.ErrTransient, "", "words.load", "open file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrFormat, "", "words.load", "parse csv", err)
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrFormat, "", "words.load", "empty file", nil)
	}
	if records[0][0] != csvHeader[0] || records[0][2] != csvHeader[2] {
		return nil, services.Wrap(services.ErrFormat, "", "words.load", fmt.Sprintf("unexpected header %v", records[0]), nil)
	}

	list := make([]Word, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + 2 // 1-based, after header
		start, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, services.Wrap(services.ErrFormat, "", "words.load", fmt.Sprintf("row %d: bad start %q", row, record[0]), err)
		}
		end, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, services.Wrap(services.ErrFormat, "", "words.load", fmt.Sprintf("row %d: bad end %q", row, record[1]), err)
		}
		confidence, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, services.Wrap(services.ErrFormat, "", "words.load", fmt.Sprintf("row %d: bad confidence %q", row, record[3]), err)
		}
		list = append(list, Word{
			Text:       record[2],
			Start:      start,
			End:        end,
			Confidence: confidence,
		})
	}
	return list, nil
}
