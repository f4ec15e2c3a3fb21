package util

import "github.com/google/uuid"

// NewFileKey monta a chave de armazenamento "<uuid>_<nome sanitizado>".
func NewFileKey(filename string) string {
	return uuid.NewString() + "_" + SanitizeFileName(filename)
}
