// Package healthcheck implements periodic health checking for the AI engines.
// It pings the engine set on an interval and tracks whether the gateway can
// answer with real engine output or has to fall back to simulation text.
package healthcheck
