package feed

import "errors"

var (
	// ErrDecode возвращается при некорректном сообщении в ленте
	ErrDecode = errors.New("feed: malformed change payload")

	// ErrEncode возвращается, если событие не удалось сериализовать
	ErrEncode = errors.New("feed: failed to encode change")

	// ErrSubscribe возвращается, если не удалось подписаться на канал
	ErrSubscribe = errors.New("feed: failed to subscribe")

	// ErrPublish возвращается, если не удалось опубликовать событие
	ErrPublish = errors.New("feed: failed to publish")

	// ErrClosed возвращается при работе с закрытой лентой
	ErrClosed = errors.New("feed: closed")
)
