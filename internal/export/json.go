package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/dailyschedule/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	CategoryID string   `json:"category_id"`
	Main       string   `json:"main,omitempty"`
	Status     string   `json:"status"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Duration   string   `json:"duration"`
	Notes      string   `json:"notes,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func ToJSON(sessions []store.TimeSession, categories map[string]store.Category, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		name, main := categoryNames(s, categories)
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		var ms int64
		if s.Duration != nil {
			ms = *s.Duration
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:         s.ID,
			Category:   name,
			CategoryID: s.CategoryID,
			Main:       main,
			Status:     string(s.Status),
			StartTime:  s.StartTime.Local().Format(time.RFC3339),
			EndTime:    endStr,
			DurationMS: ms,
			Duration:   formatDuration(ms),
			Notes:      s.Notes,
			Tags:       s.Tags,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
