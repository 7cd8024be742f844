package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turismolocal/poiscan/internal/engine/export"
	"github.com/turismolocal/poiscan/internal/model"
)

type fakeSource struct {
	name        string
	validateErr error
	fetch       func(ctx context.Context, zone model.Zone) (ZoneResult, error)
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) Validate() error { return f.validateErr }

func (f *fakeSource) FetchZone(ctx context.Context, zone model.Zone) (ZoneResult, error) {
	return f.fetch(ctx, zone)
}

func fakeRecord(id, name string) model.BusinessRecord {
	return model.BusinessRecord{
		Source:           model.SourceGoogle,
		Name:             name,
		Lat:              19.4,
		Lng:              -99.1,
		BusinessCategory: "food",
		ExternalID:       id,
	}
}

func twoZones() []model.Zone {
	return []model.Zone{
		{Lat: 19.43, Lng: -99.13, Name: "Centro Histórico", RadiusMeters: 3000},
		{Lat: 19.36, Lng: -99.16, Name: "Coyoacán", RadiusMeters: 3000},
	}
}

func TestRunGoogleEndToEnd(t *testing.T) {
	// Zone 2 repeats one record from zone 1 and reports one failed request.
	byZone := map[string]ZoneResult{
		"Centro Histórico": {Records: []model.BusinessRecord{
			fakeRecord("g-1", "Fonda Uno"),
			fakeRecord("g-2", "Fonda Dos"),
		}},
		"Coyoacán": {
			Records: []model.BusinessRecord{
				fakeRecord("g-2", "Fonda Dos"),
				fakeRecord("g-3", "Fonda Tres"),
			},
			Failed: 1,
		},
	}
	src := &fakeSource{
		name: model.SourceGoogle,
		fetch: func(_ context.Context, zone model.Zone) (ZoneResult, error) {
			return byZone[zone.Name], nil
		},
	}

	var lines []string
	sc := New(src, nil, twoZones(), t.TempDir(), 0, testLogger(),
		WithProgress(func(line string) { lines = append(lines, line) }))

	path, err := sc.RunGoogle(context.Background(), "cdmx")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sc.State())

	assert.Equal(t, []string{
		"[1/2] [50%] Centro Histórico",
		"[2/2] [100%] Coyoacán",
	}, lines)

	stats := sc.Stats()
	assert.Equal(t, int64(2), stats.ZonesDone.Load())
	assert.Equal(t, int64(4), stats.RecordsFound.Load())
	assert.Equal(t, int64(3), stats.UniqueRecords.Load())
	assert.Equal(t, int64(1), stats.RequestErrors.Load())

	recs, err := export.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "g-1", recs[0].ExternalID)
	assert.Equal(t, "g-2", recs[1].ExternalID)
	assert.Equal(t, "g-3", recs[2].ExternalID)
}

func TestRunZoneErrorDoesNotAbort(t *testing.T) {
	src := &fakeSource{
		name: model.SourceGoogle,
		fetch: func(_ context.Context, zone model.Zone) (ZoneResult, error) {
			if zone.Name == "Centro Histórico" {
				return ZoneResult{}, fmt.Errorf("upstream: %w", errors.New("503"))
			}
			return ZoneResult{Records: []model.BusinessRecord{fakeRecord("g-9", "Sobreviviente")}}, nil
		},
	}

	sc := New(src, nil, twoZones(), t.TempDir(), 0, testLogger())
	path, err := sc.RunGoogle(context.Background(), "cdmx")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sc.State())
	assert.Equal(t, int64(1), sc.Stats().RequestErrors.Load())
	assert.Equal(t, int64(2), sc.Stats().ZonesDone.Load())

	recs, err := export.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "g-9", recs[0].ExternalID)
}

func TestRunMissingCredentialFails(t *testing.T) {
	src := &fakeSource{
		name:        model.SourceGoogle,
		validateErr: fmt.Errorf("google api key: %w", ErrMissingCredential),
	}

	sc := New(src, nil, twoZones(), t.TempDir(), 0, testLogger())
	_, err := sc.RunGoogle(context.Background(), "cdmx")
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, StateFailed, sc.State())
}

func TestRunCancelledAtZoneBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{
		name: model.SourceGoogle,
		fetch: func(_ context.Context, _ model.Zone) (ZoneResult, error) {
			// Cancel after the first zone completes; the second never runs.
			cancel()
			return ZoneResult{Records: []model.BusinessRecord{fakeRecord("g-1", "Fonda Uno")}}, nil
		},
	}

	sc := New(src, nil, twoZones(), t.TempDir(), 0, testLogger())
	_, err := sc.RunGoogle(ctx, "cdmx")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, sc.State())
	assert.Equal(t, int64(1), sc.Stats().ZonesDone.Load())
}

func TestRunMerged(t *testing.T) {
	google := &fakeSource{
		name: model.SourceGoogle,
		fetch: func(_ context.Context, zone model.Zone) (ZoneResult, error) {
			if zone.Name != "Centro Histórico" {
				return ZoneResult{}, nil
			}
			return ZoneResult{Records: []model.BusinessRecord{fakeRecord("g-1", "Fonda Uno")}}, nil
		},
	}
	inegiRec := model.BusinessRecord{
		Source:           model.SourceINEGI,
		Name:             "Taquería Dos",
		Lat:              19.36,
		Lng:              -99.16,
		BusinessCategory: "food",
		ExternalID:       "i-1",
	}
	denue := &fakeSource{
		name: model.SourceINEGI,
		fetch: func(_ context.Context, _ model.Zone) (ZoneResult, error) {
			// Same record from both zones; the merge keeps it once.
			return ZoneResult{Records: []model.BusinessRecord{inegiRec}}, nil
		},
	}

	sc := New(google, denue, twoZones(), t.TempDir(), 0, testLogger())
	path, err := sc.RunMerged(context.Background(), "cdmx")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, sc.State())

	recs, err := export.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "g-1", recs[0].ExternalID)
	assert.Equal(t, model.SourceGoogle, recs[0].Source)
	assert.Equal(t, "i-1", recs[1].ExternalID)
	assert.Equal(t, model.SourceINEGI, recs[1].Source)
}

func TestRunMergedMissingSecondCredential(t *testing.T) {
	google := &fakeSource{name: model.SourceGoogle}
	denue := &fakeSource{
		name:        model.SourceINEGI,
		validateErr: fmt.Errorf("denue token: %w", ErrMissingCredential),
	}

	sc := New(google, denue, twoZones(), t.TempDir(), 0, testLogger())
	_, err := sc.RunMerged(context.Background(), "cdmx")
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, StateFailed, sc.State())
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, "[3/18] [17%] Grid-3", FormatProgress(3, 18, "Grid-3"))
	assert.Equal(t, "[18/18] [100%] Polanco", FormatProgress(18, 18, "Polanco"))
	assert.Equal(t, "[0/0] [0%] x", FormatProgress(0, 0, "x"))
}
