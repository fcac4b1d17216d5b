package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibeplay/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks from the library",
		Long:  `Display a list of all downloaded tracks stored in the library.`,
		Run: func(_ *cobra.Command, _ []string) {
			app.listTracks()
		},
	}
}

func (app *Application) listTracks() {
	entries := app.Library.Entries()
	if len(entries) == 0 {
		fmt.Println("📚 Библиотека пуста. Добавьте треки с помощью команды 'download'.")
		return
	}

	fmt.Printf("📚 Найдено треков: %d\n\n", len(entries))

	fmt.Printf("%-13s %-30s %-30s %-12s %-8s\n",
		"ID", "Исполнитель", "Название", "Длительность", "Облако")
	fmt.Println(strings.Repeat("-", 100))

	for _, entry := range entries {
		duration := utils.FormatClock(entry.Duration())
		if entry.DurationSecs == 0 {
			duration = "N/A"
		}

		cloud := "-"
		if entry.RemoteURL != "" {
			cloud = "да"
		}

		artist := utils.TruncateString(entry.Artist, 28)
		title := utils.TruncateString(entry.Title, 28)

		fmt.Printf("%-13s %-30s %-30s %-12s %-8s\n",
			entry.VideoID, artist, title, duration, cloud)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'vibeplay play [ID]' для воспроизведения трека")
}
