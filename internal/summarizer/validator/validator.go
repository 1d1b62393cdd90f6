// Package validator checks summarize requests before they reach the engine.
// Messages are user-facing and returned verbatim in the "detail" field.
package validator

import (
	"net/http"
	"strings"

	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
)

const (
	MsgEmptyText         = "O texto não pode estar vazio."
	MsgNonPositiveCount  = "O número de sentenças deve ser positivo."
	MsgTextTooLarge      = "O texto excede o tamanho máximo permitido."
	MsgEmptyBatch        = "O lote deve conter ao menos um documento."
	MsgBatchTooLarge     = "O lote excede o número máximo de documentos."
	MsgProcessingFailure = "Erro ao processar o texto: "
)

// Limits bounds request sizes. Zero values disable a check.
type Limits struct {
	MaxTextBytes int
	MaxBatchSize int
}

// Validate rejects blank text, non-positive sentence counts and texts over
// the size limit, in that order.
func Validate(text string, numSentences int, limits Limits) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, MsgEmptyText)
	}
	if numSentences <= 0 {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, MsgNonPositiveCount)
	}
	if limits.MaxTextBytes > 0 && len(text) > limits.MaxTextBytes {
		return apperrors.New(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, MsgTextTooLarge)
	}
	return nil
}

// ValidateBatchSize rejects empty batches and batches over the limit.
func ValidateBatchSize(n int, limits Limits) error {
	if n == 0 {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, MsgEmptyBatch)
	}
	if limits.MaxBatchSize > 0 && n > limits.MaxBatchSize {
		return apperrors.New(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, MsgBatchTooLarge)
	}
	return nil
}
