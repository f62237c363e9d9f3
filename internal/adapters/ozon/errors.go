package ozon

import "fmt"

// TransportError представляет сетевую ошибку: ответ от API не был получен
// (недоступность сети, DNS, таймаут, обрыв соединения)
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ozon: %s: ошибка сети: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError представляет ответ Ozon API со статусом вне диапазона 2xx
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ozon: %s: HTTP %d", e.Path, e.StatusCode)
}
