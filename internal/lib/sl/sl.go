// Package sl дополняет slog атрибутами, едиными для всех бинарников AgroCare.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут лога с ключом "error", чтобы записи
// об ошибках во всех сервисах имели одинаковую форму.
//
//	log.Error("failed to create farm", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
