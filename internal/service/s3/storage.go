package s3

import (
	"context"
	"io"
)

// Object определяет интерфейс для читаемых объектов хранилища
type Object interface {
	io.ReadCloser
	ContentLength() int64
	ContentType() string
}

// object реализует интерфейс Object
type object struct {
	io.ReadCloser
	contentLength int64
	contentType   string
	cancel        context.CancelFunc
}

func (o *object) Close() error {
	err := o.ReadCloser.Close()
	if o.cancel != nil {
		o.cancel()
	}
	return err
}

func (o *object) ContentLength() int64 {
	return o.contentLength
}

func (o *object) ContentType() string {
	return o.contentType
}

// Storage определяет интерфейс для работы с S3-совместимым хранилищем.
// PutBytes возвращает постоянный URL объекта; он сохраняется в базе как есть
// и ключ из имени файла никогда не восстанавливается.
type Storage interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	GetObject(ctx context.Context, key string) (Object, error)
	DeleteObject(ctx context.Context, key string) error
}
