package locker

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось получить за отведённое время
	ErrLockTimeout = errors.New("locker: lock wait timeout")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("locker: backend error")
)
