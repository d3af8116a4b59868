// Package streaming содержит HTTP-транспорт для потокового чтения аудио
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// UserAgent идентифицирует клиента в запросах к хранилищу треков
const UserAgent = "go-playlist/1.0"

// StatusError возвращается, когда сервер ответил неуспешным статусом
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ошибка HTTP: %s", e.Status)
}

// NewClient создает HTTP клиент для длительного потокового чтения.
// Общего таймаута нет, ограничены только соединение и ожидание заголовков.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       5 * time.Minute,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Reader буферизованный поток тела HTTP ответа
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// NewReader открывает поток по url. Клиент nil означает NewClient().
func NewReader(ctx context.Context, client *http.Client, url string, bufferSize int) (*Reader, error) {
	if client == nil {
		client = NewClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	// Сжатие для аудио бесполезно и мешает чтению порциями
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// ContentLength возвращает размер тела или -1, если он неизвестен
func (sr *Reader) ContentLength() int64 {
	return sr.resp.ContentLength
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}
