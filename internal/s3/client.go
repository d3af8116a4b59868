// Package s3 предоставляет доступ к трекам в S3-совместимом хранилище
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// Scheme префикс адресов треков в S3
const Scheme = "s3://"

// ErrNotFound объект отсутствует в хранилище
var ErrNotFound = errors.New("объект не найден в S3")

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// Client обертка над S3 API и s3manager
type Client struct {
	api      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	config   *Config
}

// NewClient создает клиента по статическим ключам
func NewClient(config *Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Для S3-совместимых хранилищ нужен path-style
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return newClient(config, s3.New(sess), s3manager.NewUploader(sess)), nil
}

func newClient(config *Config, api s3iface.S3API, uploader s3manageriface.UploaderAPI) *Client {
	return &Client{api: api, uploader: uploader, config: config}
}

// Head проверяет наличие объекта
func (c *Client) Head(ctx context.Context, bucket, key string) error {
	_, err := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка запроса HeadObject: %w", err)
	}
	return nil
}

// Open открывает объект для чтения. Тело нужно закрыть.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения объекта: %w", err)
	}
	return out.Body, nil
}

// UploadFile загружает данные в бакет из конфигурации и возвращает s3:// адрес
func (c *Client) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	if c.config.BucketName == "" {
		return "", errors.New("не задан бакет S3")
	}

	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки: %w", err)
	}

	return URI(c.config.BucketName, key), nil
}

// DeleteFile удаляет объект по s3:// адресу
func (c *Client) DeleteFile(ctx context.Context, uri string) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}

	_, err = c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления файла из S3: %w", err)
	}

	return nil
}

// URI собирает адрес вида s3://bucket/key
func URI(bucket, key string) string {
	return Scheme + bucket + "/" + key
}

// IsURI сообщает, указывает ли адрес на S3
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, Scheme)
}

// ParseURI разбирает адрес вида s3://bucket/key
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("не S3 адрес: %s", uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("некорректный S3 адрес: %s", uri)
	}
	return bucket, key, nil
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
