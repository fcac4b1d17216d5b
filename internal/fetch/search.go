package fetch

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// SearchResult описывает один результат поиска на YouTube
type SearchResult struct {
	VideoID  string
	Title    string
	Artist   string
	URL      string
	Duration time.Duration
}

// Search ищет треки на YouTube через yt-dlp.
// Сами треки скачиваются отдельно загрузчиком.
func Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// yt-dlp печатает по одной строке на результат,
	// поля разделены табуляцией
	cmd := exec.CommandContext(ctx, "yt-dlp",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
		"--flat-playlist",
		"--print", "%(id)s\t%(title)s\t%(channel)s\t%(duration)s",
		"--no-warnings",
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска через yt-dlp: %w", err)
	}

	var results []SearchResult
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || fields[0] == "" {
			continue
		}

		result := SearchResult{
			VideoID: fields[0],
			Title:   fields[1],
			Artist:  fields[2],
			URL:     canonicalURL(fields[0]),
		}
		if len(fields) > 3 {
			if secs, err := strconv.ParseFloat(fields[3], 64); err == nil {
				result.Duration = time.Duration(secs * float64(time.Second))
			}
		}
		results = append(results, result)
	}

	return results, nil
}
