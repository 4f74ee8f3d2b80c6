package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secreto", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "reportes/asistencia.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reportes/asistencia.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secreto", time.Millisecond*10)
	token, _, err := signer.Generate("job-1", "reportes/asistencia.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reportes/asistencia.csv", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secreto", time.Hour)
	token, _, err := signer.Generate("job-1", "reportes/asistencia.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)

	// Point the token at another job without re-signing.
	parts[0] = "job-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)

	// A token signed with a different secret must not validate either.
	otro := NewSignedURLSigner("otro-secreto", time.Hour)
	ajeno, _, err := otro.Generate("job-1", "reportes/asistencia.csv")
	require.NoError(t, err)
	_, _, _, err = signer.Parse(ajeno, false)
	require.Error(t, err)
}
