// Package handler implements the HTTP handlers of the agent gateway.
// It decodes run requests, hands them to the dispatcher and writes the
// result together with its flow update.
package handler
