// Package model defines the provider-agnostic language model boundary. The
// orchestration core treats model output as an opaque structured-text blob;
// provider adapters live in subpackages (anthropic, openai) and a MockModel
// supports tests and offline development.
package model
