package transcribe

import (
	"encoding/json"
	"os"
	"path/filepath"

	"cleanvid/internal/services"
	"cleanvid/internal/words"
)

// HandleExt and ResponseExt are the on-disk extensions for persisted
// job handles and completed responses.
const (
	HandleExt   = ".operation"
	ResponseExt = ".response"
)

type responseFile struct {
	Name  string       `json:"name"`
	Text  string       `json:"text"`
	Words []words.Word `json:"words"`
}

// SaveHandle writes a handle as {dir}/{name}.operation.
func SaveHandle(dir string, handle Handle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_handle", "create directory", err)
	}
	data, err := json.MarshalIndent(handle, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_handle", "marshal handle", err)
	}
	path := filepath.Join(dir, handle.Name+HandleExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_handle", "write file", err)
	}
	return nil
}

// LoadHandle reads a persisted handle.
func LoadHandle(path string) (Handle, error) {
	var handle Handle
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return handle, services.Wrap(services.ErrNotFound, "", "transcribe.load_handle", "read file", err)
		}
		return handle, services.Wrap(services.ErrTransient, "", "transcribe.load_handle", "read file", err)
	}
	if err := json.Unmarshal(data, &handle); err != nil {
		return handle, services.Wrap(services.ErrFormat, "", "transcribe.load_handle", "parse handle", err)
	}
	if handle.ID == "" {
		return handle, services.Wrap(services.ErrFormat, "", "transcribe.load_handle", "handle has no id", nil)
	}
	return handle, nil
}

// RemoveHandle deletes a persisted handle once its response is safely
// on disk. A missing file is not an error.
func RemoveHandle(dir, name string) error {
	err := os.Remove(filepath.Join(dir, name+HandleExt))
	if err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrTransient, "", "transcribe.remove_handle", "remove file", err)
	}
	return nil
}

// SaveResponse writes a completed transcript as {dir}/{name}.response.
func SaveResponse(dir, name string, transcript Transcript) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_response", "create directory", err)
	}
	data, err := json.MarshalIndent(responseFile{
		Name:  name,
		Text:  transcript.Text,
		Words: transcript.Words,
	}, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_response", "marshal response", err)
	}
	path := filepath.Join(dir, name+ResponseExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "", "transcribe.save_response", "write file", err)
	}
	return nil
}

// LoadResponse reads a persisted transcript.
func LoadResponse(path string) (Transcript, error) {
	var parsed responseFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Transcript{}, services.Wrap(services.ErrNotFound, "", "transcribe.load_response", "read file", err)
		}
		return Transcript{}, services.Wrap(services.ErrTransient, "", "transcribe.load_response", "read file", err)
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Transcript{}, services.Wrap(services.ErrFormat, "", "transcribe.load_response", "parse response", err)
	}
	return Transcript{Words: parsed.Words, Text: parsed.Text}, nil
}

// FindHandles lists persisted handles in a directory, sorted by name.
func FindHandles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+HandleExt))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "transcribe.find_handles", "glob", err)
	}
	return matches, nil
}
