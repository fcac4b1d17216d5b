package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockS3Uploader мок для S3 uploader
type MockS3Uploader struct {
	uploadFunc func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error)
}

func (m *MockS3Uploader) UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.uploadFunc(input)
}

// MockS3Client мок для S3 клиента
type MockS3Client struct {
	deleteObjectFunc func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *MockS3Client) DeleteObjectWithContext(ctx context.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error) {
	return m.deleteObjectFunc(input)
}

func TestNewUploader(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		config := &Config{
			Region:     "us-east-1",
			AccessKey:  "test-access-key",
			SecretKey:  "test-secret-key",
			BucketName: "test-bucket",
		}

		uploader, err := NewUploader(config)
		if err != nil {
			t.Fatalf("Неожиданная ошибка при создании uploader: %v", err)
		}
		if uploader == nil {
			t.Fatal("Uploader не должен быть nil")
		}
		if uploader.config != config {
			t.Error("Конфигурация должна быть сохранена")
		}
	})

	t.Run("ConfigWithEndpoint", func(t *testing.T) {
		config := &Config{
			Region:     "us-east-1",
			AccessKey:  "test-access-key",
			SecretKey:  "test-secret-key",
			Endpoint:   "https://custom-s3-endpoint.com",
			BucketName: "test-bucket",
		}

		uploader, err := NewUploader(config)
		if err != nil {
			t.Fatalf("Неожиданная ошибка при создании uploader с endpoint: %v", err)
		}
		if uploader == nil {
			t.Error("Uploader не должен быть nil")
		}
	})
}

func TestObjectURL(t *testing.T) {
	// С кастомным endpoint URL собирается по path-style
	withEndpoint := &Uploader{config: &Config{
		Endpoint:   "https://storage.example.com/",
		BucketName: "vibeplay",
		Region:     "us-east-1",
	}}
	want := "https://storage.example.com/vibeplay/dQw4w9WgXcQ.mp3"
	if got := withEndpoint.ObjectURL("dQw4w9WgXcQ.mp3"); got != want {
		t.Errorf("Ожидался URL %s, получено: %s", want, got)
	}

	// Без endpoint используется стандартный адрес AWS
	awsStyle := &Uploader{config: &Config{
		BucketName: "vibeplay",
		Region:     "eu-west-1",
	}}
	want = "https://vibeplay.s3.eu-west-1.amazonaws.com/dQw4w9WgXcQ.mp3"
	if got := awsStyle.ObjectURL("dQw4w9WgXcQ.mp3"); got != want {
		t.Errorf("Ожидался URL %s, получено: %s", want, got)
	}
}

func TestUploadFile(t *testing.T) {
	config := &Config{
		Endpoint:   "https://storage.example.com",
		BucketName: "vibeplay",
		Region:     "us-east-1",
	}

	var gotInput *s3manager.UploadInput
	mockUploader := &MockS3Uploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			gotInput = input
			// Читаем содержимое для проверки
			body, err := io.ReadAll(input.Body)
			if err != nil {
				t.Errorf("Ошибка чтения тела запроса: %v", err)
			}
			if string(body) != "test content" {
				t.Errorf("Ожидалось содержимое: test content, получено: %s", string(body))
			}
			return &s3manager.UploadOutput{}, nil
		},
	}
	uploader := &Uploader{s3Uploader: mockUploader, config: config}

	url, err := uploader.UploadFile(context.Background(), strings.NewReader("test content"), "dQw4w9WgXcQ.mp3")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if aws.StringValue(gotInput.Bucket) != "vibeplay" {
		t.Errorf("Ожидался bucket vibeplay, получено: %s", aws.StringValue(gotInput.Bucket))
	}
	if aws.StringValue(gotInput.Key) != "dQw4w9WgXcQ.mp3" {
		t.Errorf("Ожидался ключ dQw4w9WgXcQ.mp3, получено: %s", aws.StringValue(gotInput.Key))
	}
	if aws.StringValue(gotInput.ContentType) != "audio/mpeg" {
		t.Errorf("Ожидался тип audio/mpeg, получено: %s", aws.StringValue(gotInput.ContentType))
	}
	if url != "https://storage.example.com/vibeplay/dQw4w9WgXcQ.mp3" {
		t.Errorf("Неожиданный URL: %s", url)
	}
}

func TestUploadFileError(t *testing.T) {
	mockUploader := &MockS3Uploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			return nil, awserr.New("AccessDenied", "Access Denied", nil)
		},
	}
	uploader := &Uploader{
		s3Uploader: mockUploader,
		config:     &Config{BucketName: "vibeplay", Region: "us-east-1"},
	}

	_, err := uploader.UploadFile(context.Background(), strings.NewReader("x"), "file.mp3")
	if err == nil {
		t.Fatal("Ожидалась ошибка при отказе в доступе")
	}
	if !strings.Contains(err.Error(), "ошибка выгрузки") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	t.Run("SuccessfulDelete", func(t *testing.T) {
		mockClient := &MockS3Client{
			deleteObjectFunc: func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
				if aws.StringValue(input.Bucket) != "vibeplay" {
					t.Errorf("Ожидался bucket vibeplay, получено: %s", aws.StringValue(input.Bucket))
				}
				if aws.StringValue(input.Key) != "old.mp3" {
					t.Errorf("Ожидался ключ old.mp3, получено: %s", aws.StringValue(input.Key))
				}
				return &s3.DeleteObjectOutput{}, nil
			},
		}
		uploader := &Uploader{s3Client: mockClient, config: &Config{BucketName: "vibeplay"}}

		if err := uploader.DeleteFile(context.Background(), "old.mp3"); err != nil {
			t.Errorf("Неожиданная ошибка при удалении: %v", err)
		}
	})

	t.Run("DeleteError", func(t *testing.T) {
		mockClient := &MockS3Client{
			deleteObjectFunc: func(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
				return nil, awserr.New("NoSuchKey", "The specified key does not exist.", nil)
			},
		}
		uploader := &Uploader{s3Client: mockClient, config: &Config{BucketName: "vibeplay"}}

		err := uploader.DeleteFile(context.Background(), "missing.mp3")
		if err == nil {
			t.Fatal("Ожидалась ошибка при удалении несуществующего файла")
		}
		if !strings.Contains(err.Error(), "ошибка удаления файла из S3") {
			t.Errorf("Неожиданное сообщение об ошибке: %v", err)
		}
	})
}
