package notifier

import "errors"

var (
	// ErrPublish возвращается при ошибке отправки сообщений в брокер
	ErrPublish = errors.New("notifier: failed to publish messages")

	// ErrEncode возвращается, когда событие не удалось сериализовать
	ErrEncode = errors.New("notifier: failed to encode event")
)
