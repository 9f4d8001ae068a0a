// package formatter renders removal reports in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/refinery/internal/models"
	"github.com/desertthunder/refinery/internal/shared"
)

// Entry is one removed track occurrence plus the reason it was removed.
type Entry struct {
	Track  models.Track
	Reason string
}

// Report summarizes a completed review session: which playlist was curated
// and which track occurrences were removed.
type Report struct {
	Playlist    models.Playlist
	Removed     []Entry
	GeneratedAt time.Time
}

// ToCSV renders a report as CSV with columns: Position, ID, Title, Artist, Album, Year, Duration, Reason
func ToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Album", "Year", "Duration", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range report.Removed {
		track := entry.Track
		record := []string{
			strconv.Itoa(track.Position + 1),
			track.ID,
			track.Title,
			track.PrimaryArtist(),
			track.Album,
			strconv.Itoa(track.AlbumYear),
			shared.FormatDuration(track.DurationMS),
			entry.Reason,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a report as Markdown.
func ToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Cleanup: %s\n\n", report.Playlist.Name))
	if !report.GeneratedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Date**: %s\n", report.GeneratedAt.Format("2006-01-02 15:04")))
	}
	buf.WriteString(fmt.Sprintf("**Removed**: %d track(s)\n", len(report.Removed)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", shared.VisibilityString(report.Playlist.Public)))

	if len(report.Removed) == 0 {
		buf.WriteString("No tracks were removed.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Removed Tracks\n\n")
	for i, entry := range report.Removed {
		track := entry.Track
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]",
			i+1, track.PrimaryArtist(), track.Title, albumPart, shared.FormatDuration(track.DurationMS)))
		if entry.Reason != "" {
			buf.WriteString(fmt.Sprintf(" - %s", entry.Reason))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ToText renders a report as plain text.
func ToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", report.Playlist.Name))
	buf.WriteString(fmt.Sprintf("Removed: %d track(s)\n\n", len(report.Removed)))

	for i, entry := range report.Removed {
		track := entry.Track
		buf.WriteString(fmt.Sprintf("%d. %s - %s", i+1, track.PrimaryArtist(), track.Title))
		if entry.Reason != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", entry.Reason))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteReport writes a report to path, choosing the format by extension:
// .csv, .md, anything else plain text. An empty path defaults to
// {playlistID}_cleanup.txt.
func WriteReport(report *Report, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_cleanup.txt", report.Playlist.ID)
	}

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasSuffix(path, ".csv"):
		data, err = ToCSV(report)
	case strings.HasSuffix(path, ".md"):
		data, err = ToMarkdown(report)
	default:
		data, err = ToText(report)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
