package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibeplay/internal/s3"
	"github.com/hazadus/go-vibeplay/internal/uploader"
)

// createPushCommand создает команду push с привязкой к экземпляру приложения
func (app *Application) createPushCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "push [video id]",
		Short: "Upload a library track to S3 storage",
		Long:  `Upload a downloaded track to S3 storage with progress tracking, so it can be streamed after the local cache is cleaned.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Выгрузка большого файла может занять время, ограничиваем разумно
			pushCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.pushTrack(pushCtx, args[0])
		},
	}
}

func (app *Application) pushTrack(ctx context.Context, videoID string) error {
	s3Config := &s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	}

	s3Uploader, err := s3.NewUploader(s3Config)
	if err != nil {
		return fmt.Errorf("ошибка создания S3 клиента: %w", err)
	}

	service := uploader.NewService(s3Uploader, app.Library)

	fmt.Printf("📤 Выгружаем трек в S3:\n")
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Println()

	startTime := time.Now()
	result, err := service.PushTrack(ctx, videoID, func(bytesRead int64) {
		elapsed := time.Since(startTime)
		speed := float64(bytesRead) / elapsed.Seconds()
		fmt.Printf("\r📊 Выгружено: %s | Скорость: %s/s",
			uploader.FormatFileSize(bytesRead),
			uploader.FormatFileSize(int64(speed)))
	})
	if err != nil {
		fmt.Println()
		return fmt.Errorf("ошибка выгрузки: %w", err)
	}

	fmt.Printf("\n✅ Трек выгружен: %s - %s\n", result.Entry.Artist, result.Entry.Title)
	fmt.Printf("   Размер: %s\n", uploader.FormatFileSize(result.Size))
	fmt.Printf("   URL: %s\n", result.RemoteURL)
	return nil
}
