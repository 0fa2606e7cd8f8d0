// Package logx provides stockwatch's structured logger.
//
// It wraps zerolog behind a small Logger value so components can be handed a
// logger (or a derived one via With) without depending on sink setup. Sinks
// are a human-readable console writer and an optional JSON log file.
package logx
