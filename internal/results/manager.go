// Package results manages conversion run artifacts on disk. Each input gets
// its own directory holding the transcript, formatted markdown, LaTeX source,
// compiled PDF, HTML preview and the correction log.
package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"homework-transcriber/internal/document"
)

// RunStatus represents the progress of a conversion run.
type RunStatus string

const (
	// StatusRecognizing indicates pages are being transcribed
	StatusRecognizing RunStatus = "recognizing"
	// StatusFormatted indicates the markdown conversion is done
	StatusFormatted RunStatus = "formatted"
	// StatusCompiled indicates a PDF was produced
	StatusCompiled RunStatus = "compiled"
	// StatusError indicates the run failed
	StatusError RunStatus = "error"
)

// RunInfo holds metadata about one conversion run.
type RunInfo struct {
	Name         string    `json:"name"`
	SourceFile   string    `json:"source_file"`
	Engine       string    `json:"engine"`
	Pages        int       `json:"pages"`
	Corrections  int       `json:"corrections"`
	Status       RunStatus `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Manager stores conversion runs under a base directory.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager with the specified base directory.
// If baseDir is empty, the default location in the user's home is used.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(homeDir, "homework-transcriber-results")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &Manager{baseDir: baseDir}, nil
}

// GetBaseDir returns the base directory for results.
func (m *Manager) GetBaseDir() string {
	return m.baseDir
}

// RunDir returns the directory path for a named run.
func (m *Manager) RunDir(name string) string {
	return filepath.Join(m.baseDir, sanitizeName(name))
}

// Artifact paths within a run directory.

func (m *Manager) TranscriptPath(name string) string {
	return filepath.Join(m.RunDir(name), "transcript.md")
}

func (m *Manager) FormattedPath(name string) string {
	return filepath.Join(m.RunDir(name), "homework.md")
}

func (m *Manager) TexPath(name string) string {
	return filepath.Join(m.RunDir(name), "homework.tex")
}

func (m *Manager) PDFPath(name string) string {
	return filepath.Join(m.RunDir(name), "homework.pdf")
}

func (m *Manager) PreviewPath(name string) string {
	return filepath.Join(m.RunDir(name), "preview.html")
}

func (m *Manager) CorrectionsPath(name string) string {
	return filepath.Join(m.RunDir(name), "corrections.json")
}

// SaveRunInfo persists run metadata to the run directory.
func (m *Manager) SaveRunInfo(info *RunInfo) error {
	runDir := m.RunDir(info.Name)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, "metadata.json"), data, 0644)
}

// LoadRunInfo loads run metadata.
func (m *Manager) LoadRunInfo(name string) (*RunInfo, error) {
	data, err := os.ReadFile(filepath.Join(m.RunDir(name), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveArtifact writes one text artifact into the run directory.
func (m *Manager) SaveArtifact(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// SaveCorrections writes the correction log as JSON.
func (m *Manager) SaveCorrections(name string, corrections []document.Correction) error {
	if corrections == nil {
		corrections = []document.Correction{}
	}
	data, err := json.MarshalIndent(corrections, "", "  ")
	if err != nil {
		return err
	}
	path := m.CorrectionsPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ListRuns returns metadata for all stored runs, newest first.
func (m *Manager) ListRuns() ([]*RunInfo, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*RunInfo{}, nil
		}
		return nil, err
	}

	var runs []*RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var info RunInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}
		runs = append(runs, &info)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// DeleteRun removes a run and all its artifacts.
func (m *Manager) DeleteRun(name string) error {
	return os.RemoveAll(m.RunDir(name))
}

// RunExists reports whether a run with this name exists.
func (m *Manager) RunExists(name string) bool {
	_, err := os.Stat(filepath.Join(m.RunDir(name), "metadata.json"))
	return err == nil
}

// UpdateStatus updates a run's status and error message.
func (m *Manager) UpdateStatus(name string, status RunStatus, errorMsg string) error {
	info, err := m.LoadRunInfo(name)
	if err != nil {
		return err
	}
	info.Status = status
	info.ErrorMessage = errorMsg
	return m.SaveRunInfo(info)
}

// sanitizeName converts a run name to a safe directory name.
func sanitizeName(name string) string {
	safe := strings.ReplaceAll(name, "/", "_")
	safe = strings.ReplaceAll(safe, ":", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.ReplaceAll(safe, " ", "_")
	return safe
}

// RunNameFor derives a run name from an input path: the base name without
// extension.
func RunNameFor(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
