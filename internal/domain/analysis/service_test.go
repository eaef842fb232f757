package analysis

import (
	"bytes"
	"context"
	stdimage "image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepscan-server/internal/domain/detector"
	domainimage "deepscan-server/internal/domain/image"
	"deepscan-server/internal/platform/config"
	platformerrors "deepscan-server/internal/platform/errors"
	"deepscan-server/internal/platform/storage"
)

// scriptedDetector lets tests control the result and observe invocations.
type scriptedDetector struct {
	result  *detector.Result
	err     error
	loaded  bool
	version string
	calls   int
}

func (d *scriptedDetector) Load(string) error {
	d.loaded = true
	if d.version == "" {
		d.version = "MockModel v1.0"
	}
	return nil
}

func (d *scriptedDetector) Detect(context.Context, *domainimage.Canonical) (*detector.Result, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

func (d *scriptedDetector) ModelInfo() detector.ModelState {
	if !d.loaded {
		return detector.ModelState{Version: "Unknown", IsLoaded: false}
	}
	return detector.ModelState{Version: d.version, IsLoaded: true}
}

func fakeResult() *detector.Result {
	return &detector.Result{
		IsFake:           true,
		Confidence:       87.5,
		GenerationMethod: "GAN",
		ProcessingTimeMs: 1234.56,
		Anomalies: []detector.AnomalyRegion{
			{Region: "Eyes", Score: 78.3},
			{Region: "Mouth", Score: 65.2},
		},
	}
}

func pngUpload(t *testing.T) domainimage.Upload {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domainimage.Upload{
		Reader:      bytes.NewReader(buf.Bytes()),
		Filename:    "a.png",
		ContentType: "image/png",
	}
}

func newTestService(t *testing.T, det detector.Detector, history *storage.HistoryRepository) *Service {
	t.Helper()
	svc, err := NewService(config.DefaultConfig(), det, history, nil)
	require.NoError(t, err)
	return svc
}

func TestService_AnalyzeSuccess(t *testing.T) {
	det := &scriptedDetector{result: fakeResult()}
	require.NoError(t, det.Load(""))
	svc := newTestService(t, det, nil)

	report, err := svc.Analyze(context.Background(), pngUpload(t))
	require.NoError(t, err)

	assert.True(t, report.IsFake)
	assert.Equal(t, 87.5, report.Confidence)
	require.NotNil(t, report.GenerationMethod)
	assert.Equal(t, "GAN", *report.GenerationMethod)
	assert.Nil(t, report.HeatmapURL)
	assert.Equal(t, "MockModel v1.0", report.Details.ModelVersion)
	assert.Equal(t, 1234.56, report.Details.ProcessingTime)
	require.Len(t, report.Details.Anomalies, 2)
	assert.Equal(t, "Eyes", report.Details.Anomalies[0].Region)
}

func TestService_AnalyzeOmitsMethodForAuthentic(t *testing.T) {
	result := fakeResult()
	result.IsFake = false
	result.GenerationMethod = ""
	det := &scriptedDetector{result: result}
	require.NoError(t, det.Load(""))
	svc := newTestService(t, det, nil)

	report, err := svc.Analyze(context.Background(), pngUpload(t))
	require.NoError(t, err)
	assert.Nil(t, report.GenerationMethod)
}

func TestService_ValidationShortCircuitsDetector(t *testing.T) {
	det := &scriptedDetector{result: fakeResult()}
	require.NoError(t, det.Load(""))
	svc := newTestService(t, det, nil)

	upload := pngUpload(t)
	upload.Filename = "a.gif"

	_, err := svc.Analyze(context.Background(), upload)
	verr, ok := domainimage.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, domainimage.CodeUnsupportedFormat, verr.Code)
	assert.Zero(t, det.calls, "detector must not run for rejected uploads")
}

func TestService_DetectorFailureIsWrapped(t *testing.T) {
	det := &scriptedDetector{err: platformerrors.New(platformerrors.KindDetector, "detect", "boom")}
	require.NoError(t, det.Load(""))
	svc := newTestService(t, det, nil)

	_, err := svc.Analyze(context.Background(), pngUpload(t))
	require.Error(t, err)

	_, isValidation := domainimage.AsValidation(err)
	assert.False(t, isValidation, "detector failures are not client faults")
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindDetector))
}

func TestService_Health(t *testing.T) {
	det := &scriptedDetector{result: fakeResult()}
	svc := newTestService(t, det, nil)

	health := svc.Health()
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.False(t, health.ModelLoaded)
	assert.Equal(t, "Unknown", health.ModelVersion)

	require.NoError(t, det.Load(""))

	health = svc.Health()
	assert.True(t, health.ModelLoaded)
	assert.Equal(t, "MockModel v1.0", health.ModelVersion)
}

func TestService_RecordsHistory(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })
	history := storage.NewHistoryRepository(db)

	det := &scriptedDetector{result: fakeResult()}
	require.NoError(t, det.Load(""))
	svc := newTestService(t, det, history)

	_, err = svc.Analyze(context.Background(), pngUpload(t))
	require.NoError(t, err)

	records, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a.png", records[0].Filename)
	assert.True(t, records[0].IsFake)
	assert.Equal(t, "GAN", records[0].GenerationMethod)
	assert.True(t, svc.HistoryEnabled())
}

func TestService_HistoryDisabled(t *testing.T) {
	det := &scriptedDetector{result: fakeResult()}
	svc := newTestService(t, det, nil)

	assert.False(t, svc.HistoryEnabled())
	_, err := svc.History(context.Background(), 10)
	assert.Error(t, err)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(nil, &scriptedDetector{}, nil, nil)
	assert.Error(t, err)

	_, err = NewService(config.DefaultConfig(), nil, nil, nil)
	assert.Error(t, err)
}
