package domain

import "errors"

var (
	// ErrContentFlagged signals the moderation gate rejected the query.
	ErrContentFlagged = errors.New("query contains inappropriate content")
	// ErrInvalidAdvice signals a return_advice payload that failed schema validation.
	ErrInvalidAdvice = errors.New("invalid travel advice")
	// ErrIndexEmpty signals a search against an empty or unbuilt index.
	ErrIndexEmpty = errors.New("index is empty")
	// ErrCorruptIndex signals mutually inconsistent index artifacts on load.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
)
