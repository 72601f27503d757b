package analyses

import (
	"errors"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/llm"
)

var (
	ErrNoFile           = errors.New("no file uploaded")
	ErrInvalidFileType  = errors.New("only .docx files are allowed")
	ErrEmptyDocument    = errors.New("document appears to be empty")
	ErrExtraction       = errors.New("failed to extract text from document")
	ErrUnknownEngine    = errors.New("unknown analysis engine")
	ErrNoFileName       = errors.New("no file specified")
	ErrPathTraversal    = errors.New("invalid filename")
	ErrDownloadNotFound = errors.New("file not found")

	// Engine failures keep the identity of the package that produced them.
	ErrPromptLoad       = llm.ErrPromptLoad
	ErrUpstreamAPI      = llm.ErrUpstreamAPI
	ErrUpstreamParse    = llm.ErrUpstreamParse
	ErrLLMNotConfigured = llm.ErrNotConfigured
	ErrSchemaMismatch   = analysis.ErrSchemaMismatch
)

// extractionError matches both ErrExtraction and its cause.
type extractionError struct {
	cause error
}

func (e *extractionError) Error() string {
	return ErrExtraction.Error() + ": " + e.cause.Error()
}

func (e *extractionError) Unwrap() []error {
	return []error{ErrExtraction, e.cause}
}

// Client-facing messages, kept identical to what the dashboard already displays.
const (
	msgNoFile         = "No file uploaded"
	msgInvalidType    = "Only .docx files are allowed"
	msgTooLarge       = "File too large"
	msgEmptyDocument  = "Document appears to be empty"
	msgNoFileName     = "No file specified"
	msgInvalidName    = "Invalid filename"
	msgFileNotFound   = "File not found"
	msgDownloadFailed = "Failed to download file"
	msgNoText         = "No transcript text provided"
	msgGenericFailure = "An error occurred while processing the transcript"
)

// failureMessage renders an analysis failure the way the upload endpoint reports it.
func failureMessage(err error) string {
	var extractErr *extractionError
	switch {
	case err == nil:
		return msgGenericFailure
	case errors.Is(err, ErrEmptyDocument):
		return msgEmptyDocument
	case errors.As(err, &extractErr):
		return "Failed to extract text from document: " + extractErr.cause.Error()
	case errors.Is(err, ErrPromptLoad),
		errors.Is(err, ErrUpstreamAPI),
		errors.Is(err, ErrUpstreamParse),
		errors.Is(err, ErrLLMNotConfigured):
		return "LLM analysis failed: " + err.Error()
	default:
		return msgGenericFailure
	}
}
