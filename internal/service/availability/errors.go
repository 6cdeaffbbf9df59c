package availability

import "errors"

var (
	// ErrSubscribe возвращается, если не удалось подписаться на ленту изменений
	ErrSubscribe = errors.New("availability: failed to subscribe to change feed")

	// ErrSnapshot возвращается, если не удалось загрузить снимок броней
	ErrSnapshot = errors.New("availability: failed to load snapshot")

	// ErrClosed возвращается после остановки реестра
	ErrClosed = errors.New("availability: registry closed")
)
