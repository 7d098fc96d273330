package lazypush_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/lazypush/internal/lazypush"
)

func TestReporterWritesPlainLinesOffTerminal(testInstance *testing.T) {
	testCases := []struct {
		name         string
		colorEnabled bool
	}{
		{name: "color_enabled", colorEnabled: true},
		{name: "color_disabled", colorEnabled: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			reporter := lazypush.NewReporter(output, testCase.colorEnabled)

			reporter.Status(testNoChangesLineConstant)
			reporter.Trace(testStagingTraceLineConstant)
			reporter.Failure(testCommitFailedLineConstant)
			reporter.Success(testPushSucceededLineConstant)

			expectedOutput := testNoChangesLineConstant + "\n" +
				testStagingTraceLineConstant + "\n" +
				testCommitFailedLineConstant + "\n" +
				testPushSucceededLineConstant + "\n"
			require.Equal(testInstance, expectedOutput, output.String())
		})
	}
}

func TestNewReporterToleratesMissingOutput(testInstance *testing.T) {
	reporter := lazypush.NewReporter(nil, true)
	require.NotPanics(testInstance, func() { reporter.Status(testNoChangesLineConstant) })
}

type failingWriter struct {
	failure error
}

func (writer failingWriter) Write([]byte) (int, error) {
	return 0, writer.failure
}

func TestReporterLogsWriteFailures(testInstance *testing.T) {
	writeFailure := errors.New("broken pipe")
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	reporter := lazypush.NewReporter(failingWriter{failure: writeFailure}, false, lazypush.WithReporterLogger(zap.New(observerCore)))

	reporter.Failure(testCommitFailedLineConstant)
	reporter.Success(testPushSucceededLineConstant)

	require.ErrorIs(testInstance, reporter.Err(), writeFailure)
	entries := observedLogs.FilterMessage("unable to write status line").All()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, zapcore.ErrorLevel, entries[0].Level)
	require.Equal(testInstance, testCommitFailedLineConstant, entries[0].ContextMap()["line"])
}

func TestReporterHasNoErrorAfterSuccessfulWrites(testInstance *testing.T) {
	reporter := lazypush.NewReporter(&bytes.Buffer{}, false)
	reporter.Status(testNoChangesLineConstant)
	require.NoError(testInstance, reporter.Err())
}
