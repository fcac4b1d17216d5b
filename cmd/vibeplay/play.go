package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibeplay/internal/library"
	"github.com/hazadus/go-vibeplay/internal/streaming"
	"github.com/hazadus/go-vibeplay/internal/utils"
)

// streamBufferSize — размер буфера потокового чтения трека из облака
const streamBufferSize = 256 * 1024

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [video id]",
		Short: "Play a library track by its video ID",
		Long:  `Play a downloaded track from the local cache, or stream it from cloud storage when the local file is gone.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.playTrack(ctx, args[0])
		},
	}
}

func (app *Application) playTrack(ctx context.Context, videoID string) error {
	entry, ok := app.Library.FindByVideoID(videoID)
	if !ok {
		return fmt.Errorf("трек %q не найден в библиотеке", videoID)
	}

	reader, source, err := openTrack(ctx, entry)
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   Исполнитель: %s\n", entry.Artist)
	fmt.Printf("   Название: %s\n", entry.Title)
	fmt.Printf("   Источник: %s\n", source)
	fmt.Println()

	streamer, format, err := mp3.Decode(reader)
	if err != nil {
		return fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("ошибка инициализации аудио: %w", err)
	}
	defer speaker.Clear()

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n⏹  Воспроизведение прервано")
			return nil
		case <-done:
			fmt.Println("\n✅ Воспроизведение завершено")
			return nil
		case <-ticker.C:
			speaker.Lock()
			position := format.SampleRate.D(streamer.Position())
			total := format.SampleRate.D(streamer.Len())
			speaker.Unlock()

			if total > 0 {
				fmt.Printf("\r⏱  %s / %s", utils.FormatClock(position), utils.FormatClock(total))
			} else {
				fmt.Printf("\r⏱  %s", utils.FormatClock(position))
			}
		}
	}
}

// openTrack открывает источник трека: локальный файл из кэша, а если его
// нет — поток из облачного хранилища
func openTrack(ctx context.Context, entry library.Entry) (io.ReadCloser, string, error) {
	if entry.FilePath != "" {
		if file, err := os.Open(entry.FilePath); err == nil {
			return file, entry.FilePath, nil
		}
	}

	if entry.RemoteURL == "" {
		return nil, "", fmt.Errorf("у трека %q нет ни локального файла, ни облачной копии", entry.VideoID)
	}

	reader, err := streaming.NewReader(ctx, entry.RemoteURL, streamBufferSize)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка открытия потока: %w", err)
	}
	return reader, entry.RemoteURL, nil
}
