package logger

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("err"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestFatalCallsExit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("boom")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "[FATAL]")
}

func TestLogErrorClassification(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"transient", &errors.TransientProviderError{Provider: "ledger", Err: fmt.Errorf("eof")}, "[WARN]"},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), "[WARN]"},
		{"config", &errors.InvalidConfigurationError{CampaignID: "c1", Reason: "invalid bounty"}, "invalid configuration"},
		{"rejected", &errors.PayoutRejectedError{CampaignID: "c1", Reason: "no marker"}, "payout rejected: no marker"},
		{"scoring", &errors.ScoringUnavailableError{Err: fmt.Errorf("503")}, "scoring unavailable"},
		{"other", fmt.Errorf("weird"), "unexpected error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(DEBUG, &buf)
			l.LogError("c1", tc.err)
			assert.Contains(t, buf.String(), tc.expected)
		})
	}
}

func TestErrorHelpersReportCallerSite(t *testing.T) {
	var buf bytes.Buffer
	prev := defaultLogger
	defaultLogger = NewLogger(DEBUG, &buf)
	defer func() { defaultLogger = prev }()

	LogError("c1", fmt.Errorf("weird"))
	_ = Errorf(fmt.Errorf("eof"), "fetch %s", "page")
	defaultLogger.LogError("c2", fmt.Errorf("weird"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, string(line), "[logger_test.go:")
		assert.NotContains(t, string(line), "[logger.go:")
	}
}
