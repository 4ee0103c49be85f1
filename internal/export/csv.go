package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/dailyschedule/internal/store"
)

func ToCSV(sessions []store.TimeSession, categories map[string]store.Category, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Category", "Main", "Status", "Start", "End", "Duration (ms)", "Duration", "Notes", "Tags"}
	if err := w.Write(header); err != nil {
		return err
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

		row := []string{
			s.ID,
			name,
			main,
			string(s.Status),
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(ms, 10),
			formatDuration(ms),
			s.Notes,
			strings.Join(s.Tags, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// categoryNames returns the display name of the session's category and of
// its main category. The name stored on the session is used when the
// category has since been deleted.
func categoryNames(s store.TimeSession, categories map[string]store.Category) (name, main string) {
	c, ok := categories[s.CategoryID]
	if !ok {
		if s.CategoryName != "" {
			return s.CategoryName, ""
		}
		return "Unknown", ""
	}
	if c.IsMain() {
		return c.Name, c.Name
	}
	for _, p := range categories {
		if p.IsMain() && p.Key == c.Parent() {
			return c.Name, p.Name
		}
	}
	return c.Name, ""
}

// ByID indexes categories by store id for the exporters.
func ByID(categories []store.Category) map[string]store.Category {
	m := make(map[string]store.Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
