package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lazypush/internal/utils"
)

type recordingFlusher struct {
	bytes.Buffer
	flushCount int
}

func (flusher *recordingFlusher) Flush() {
	flusher.flushCount++
}

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriterSize(destination, 4096)

	writer := utils.NewFlushingWriter(bufferedWriter)
	bytesWritten, writeError := writer.Write([]byte("Staging changes...\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len("Staging changes...\n"), bytesWritten)
	require.Equal(testInstance, "Staging changes...\n", destination.String())
}

func TestFlushingWriterInvokesFlushWithoutError(testInstance *testing.T) {
	destination := &recordingFlusher{}

	writer := utils.NewFlushingWriter(destination)
	_, writeError := writer.Write([]byte("line\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 1, destination.flushCount)
	require.Equal(testInstance, "line\n", destination.String())
}

func TestNewFlushingWriterDoesNotWrapTwice(testInstance *testing.T) {
	writer := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
