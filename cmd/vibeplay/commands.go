package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibeplay/internal/agent"
	"github.com/hazadus/go-vibeplay/internal/config"
	"github.com/hazadus/go-vibeplay/internal/fetch"
	"github.com/hazadus/go-vibeplay/internal/library"
	"github.com/hazadus/go-vibeplay/internal/player"
	"github.com/hazadus/go-vibeplay/internal/session"
	"github.com/hazadus/go-vibeplay/internal/state"
	"github.com/hazadus/go-vibeplay/internal/tui"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Запуск без подкоманды открывает интерактивный плеер.
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vibeplay",
		Short: "Terminal music player with an AI DJ",
		Long:  `Terminal music player: plays tracks from YouTube, keeps a local library and takes natural language requests.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchPlayer(ctx)
		},
	}

	rootCmd.AddCommand(app.createDownloadCommand(ctx))
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createPushCommand(ctx))

	return rootCmd
}

// launchPlayer собирает все части плеера и запускает интерактивный интерфейс
func (app *Application) launchPlayer(ctx context.Context) error {
	// Журнал пишем в файл: stdout занят интерфейсом
	logPath, err := config.LogPath()
	if err == nil {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
			if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				log.SetOutput(logFile)
				defer logFile.Close()
			}
		}
	}
	log.Printf("Запуск плеера, кэш: %s", app.Config.CacheDir)

	st := state.New(app.Config.DefaultVolume)
	app.restoreLibraryPanel(st)

	p := player.NewPlayer(app.Config.DefaultVolume)
	defer p.Stop()

	engine := session.NewEngine(st, p)
	downloader := fetch.NewDownloader(app.Config.CacheDir)
	orchestrator := fetch.NewOrchestrator(ctx, st, app.Library, downloader)
	dj := agent.New(app.Config.APIKey, app.Config.Model, st, orchestrator)

	return tui.Run(ctx, st, engine, dj)
}

// restoreLibraryPanel наполняет панель библиотеки ранее загруженными
// треками, у которых сохранился локальный файл
func (app *Application) restoreLibraryPanel(st *state.State) {
	count := 0
	for _, entry := range app.Library.Entries() {
		if _, err := os.Stat(entry.FilePath); err != nil {
			continue
		}
		st.PushLibrary(state.Track{
			Title:    entry.Title,
			Artist:   entry.Artist,
			URL:      entry.URL,
			FilePath: entry.FilePath,
			Duration: entry.Duration(),
			Status:   state.StatusReady,
		})
		count++
	}
	log.Printf("Восстановлено треков в библиотеке: %d", count)
}

// createDownloadCommand создает команду download с привязкой к приложению
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "download [YouTube URL]",
		Short: "Download audio from a YouTube video into the cache",
		Long:  `Download audio from a YouTube video, save it to the cache directory and add it to the library.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.downloadTrack(ctx, args[0])
		},
	}
}

func (app *Application) downloadTrack(ctx context.Context, url string) error {
	downloader := fetch.NewDownloader(app.Config.CacheDir)

	fmt.Printf("⏬ Загружаем: %s\n", url)
	result, err := downloader.Download(ctx, url)
	if err != nil {
		return fmt.Errorf("ошибка загрузки: %w", err)
	}

	if err := app.Library.Add(toLibraryEntry(result)); err != nil {
		return fmt.Errorf("ошибка сохранения библиотеки: %w", err)
	}

	fmt.Printf("✅ Трек загружен: %s - %s\n", result.Artist, result.Title)
	fmt.Printf("   Файл: %s\n", result.FilePath)
	return nil
}

// toLibraryEntry превращает результат загрузки в запись библиотеки
func toLibraryEntry(result *fetch.Result) library.Entry {
	return library.Entry{
		VideoID:      result.VideoID,
		Title:        result.Title,
		Artist:       result.Artist,
		URL:          result.URL,
		DurationSecs: int(result.Duration / time.Second),
		FilePath:     result.FilePath,
	}
}
